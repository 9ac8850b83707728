// Command anchorpq-fingerprint walks a directory of compiled class files,
// builds the deterministic Merkle tree over them, and writes
// merkle-root.txt plus metadata.json/metadata.xml describing the run.
package main

import (
	"flag"
	"log"
	"strings"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/fingerprint"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/merkle"
)

func main() {
	var (
		classesRoot   = flag.String("classes", ".", "root directory of compiled class files")
		version       = flag.String("version", "", "application version this build belongs to")
		variant       = flag.String("variant", "release", "build variant (e.g. release, debug)")
		algorithm     = flag.String("algorithm", string(merkle.SHA256), "leaf/node hash algorithm")
		signer        = flag.String("signer", "", "hex-encoded signer fingerprint to embed in metadata")
		outputDir     = flag.String("out", ".", "directory to write merkle-root.txt and metadata files to")
		extraExcludes = flag.String("exclude", "", "comma-separated regexes for extra class-name excludes, on top of the defaults")
	)
	flag.Parse()

	if *version == "" {
		log.Fatalf("-version is required")
	}

	var extra []string
	if *extraExcludes != "" {
		extra = strings.Split(*extraExcludes, ",")
	}

	cfg := fingerprint.Config{
		ClassesRoot:          *classesRoot,
		Version:              *version,
		Variant:              *variant,
		Algorithm:            merkle.Algorithm(*algorithm),
		SignerFingerprintHex: *signer,
		OutputDir:            *outputDir,
		ExtraExcludes:        extra,
	}

	result, err := fingerprint.Run(cfg)
	if err != nil {
		log.Fatalf("fingerprint failed: %v", err)
	}

	if err := fingerprint.WriteMerkleRootFile(*outputDir, result.Tree.RootHex()); err != nil {
		log.Fatalf("failed to write merkle-root.txt: %v", err)
	}
	if err := fingerprint.WriteMetadataJSON(*outputDir, result.Metadata); err != nil {
		log.Fatalf("failed to write metadata.json: %v", err)
	}
	if err := fingerprint.WriteMetadataXML(*outputDir, result.Metadata); err != nil {
		log.Fatalf("failed to write metadata.xml: %v", err)
	}

	log.Printf("fingerprinted %d files, merkle root %s", result.Tree.LeafCount(), result.Tree.RootHex())
}
