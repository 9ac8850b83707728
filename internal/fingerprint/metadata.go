package fingerprint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PluginInfo identifies the tooling that produced a Metadata record.
type PluginInfo struct {
	Name    string `json:"name"`
	Version string `json:"pluginVersion"`
}

// Metadata is the persisted record of a fingerprinting run. Field order
// here is the order both the JSON and XML renderings use.
type Metadata struct {
	Version           string     `json:"version"`
	Variant           string     `json:"variant"`
	HashAlgorithm     string     `json:"hashAlgorithm"`
	MerkleRoot        string     `json:"merkleRoot"`
	Timestamp         string     `json:"timestamp"`
	LeafCount         int        `json:"leafCount"`
	SignerFingerprint string     `json:"signerFingerprint,omitempty"`
	Plugin            PluginInfo `json:"plugin"`
}

// WriteMerkleRootFile writes the lowercase hex root as a single line with
// no trailing whitespace other than the newline.
func WriteMerkleRootFile(dir, rootHex string) error {
	path := filepath.Join(dir, "merkle-root.txt")
	return os.WriteFile(path, []byte(rootHex+"\n"), 0o644)
}

// WriteMetadataJSON writes metadata.json as pretty-printed JSON.
func WriteMetadataJSON(dir string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "metadata.json")
	return os.WriteFile(path, data, 0o644)
}

// WriteMetadataXML writes metadata.xml, a hand-rolled rendering of the same
// fields JSON carries, in the same order.
func WriteMetadataXML(dir string, meta Metadata) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<metadata>\n")
	writeElement(&b, "version", meta.Version)
	writeElement(&b, "variant", meta.Variant)
	writeElement(&b, "hashAlgorithm", meta.HashAlgorithm)
	writeElement(&b, "merkleRoot", meta.MerkleRoot)
	writeElement(&b, "timestamp", meta.Timestamp)
	writeElement(&b, "leafCount", strconv.Itoa(meta.LeafCount))
	if meta.SignerFingerprint != "" {
		writeElement(&b, "signerFingerprint", meta.SignerFingerprint)
	}
	b.WriteString("  <plugin>\n")
	b.WriteString("    " + element("name", meta.Plugin.Name) + "\n")
	b.WriteString("    " + element("pluginVersion", meta.Plugin.Version) + "\n")
	b.WriteString("  </plugin>\n")
	b.WriteString("</metadata>\n")

	path := filepath.Join(dir, "metadata.xml")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeElement(b *strings.Builder, name, value string) {
	b.WriteString("  " + element(name, value) + "\n")
}

func element(name, value string) string {
	return fmt.Sprintf("<%s>%s</%s>", name, escapeXML(value), name)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
