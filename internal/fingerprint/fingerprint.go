// Package fingerprint walks a tree of compiled class files, hashes and
// sorts them deterministically, and builds the Merkle tree that becomes a
// build's canonical integrity record.
package fingerprint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/merkle"
)

var ErrNoEligibleFiles = errors.New("fingerprint: no eligible class files found under root")

// Config describes one fingerprinting run.
type Config struct {
	ClassesRoot          string
	Version              string
	Variant              string
	Algorithm            merkle.Algorithm
	SignerFingerprintHex string
	OutputDir            string

	// ExtraExcludes are additional base-name regexes, evaluated on top of
	// the built-in exclude patterns, for build-specific generated classes
	// the defaults don't know about.
	ExtraExcludes []string
}

// Result is everything a fingerprinting run produces.
type Result struct {
	Tree      *merkle.Tree
	LeafPaths []string // relative paths, in the order they were hashed (sorted)
	Metadata  Metadata
}

// Run walks cfg.ClassesRoot, hashes every eligible *.class file, builds the
// Merkle tree over them in sorted-path order, and returns the result without
// writing anything to disk. Callers use the Write* helpers to persist it.
func Run(cfg Config) (*Result, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = merkle.SHA256
	}
	if !merkle.IsSupported(cfg.Algorithm) {
		return nil, merkle.ErrUnsupportedAlgorithm
	}

	extra := make([]*regexp.Regexp, 0, len(cfg.ExtraExcludes))
	for _, pat := range cfg.ExtraExcludes {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: invalid exclude pattern %q: %w", pat, err)
		}
		extra = append(extra, re)
	}

	var relPaths []string
	err := filepath.WalkDir(cfg.ClassesRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".class" {
			return nil
		}
		rel, err := filepath.Rel(cfg.ClassesRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isExcluded(filepath.Base(rel), rel, extra) {
			return nil
		}
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(relPaths) == 0 {
		return nil, ErrNoEligibleFiles
	}

	sort.Strings(relPaths)

	leafHashes := make([]merkle.Hash, 0, len(relPaths))
	for _, rel := range relPaths {
		data, err := os.ReadFile(filepath.Join(cfg.ClassesRoot, rel))
		if err != nil {
			return nil, err
		}
		h, err := merkle.HashBytes(data, cfg.Algorithm)
		if err != nil {
			return nil, err
		}
		leafHashes = append(leafHashes, h)
	}

	tree, err := merkle.NewTree(leafHashes, cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		Version:           cfg.Version,
		Variant:           cfg.Variant,
		HashAlgorithm:     string(cfg.Algorithm),
		MerkleRoot:        tree.RootHex(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		LeafCount:         tree.LeafCount(),
		SignerFingerprint: cfg.SignerFingerprintHex,
		Plugin: PluginInfo{
			Name:    "Anchor PQ Integrity Plugin",
			Version: "1.0.0",
		},
	}

	return &Result{Tree: tree, LeafPaths: relPaths, Metadata: meta}, nil
}
