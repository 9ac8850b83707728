// Package merkle implements the deterministic hash and Merkle-tree engine
// shared by the build-time fingerprinter and the verification core.
package merkle

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"

	"golang.org/x/crypto/sha3"
)

// Algorithm identifies one of the supported leaf/node digest functions.
type Algorithm string

const (
	SHA256   Algorithm = "SHA-256"
	SHA384   Algorithm = "SHA-384"
	SHA512   Algorithm = "SHA-512"
	SHA3_256 Algorithm = "SHA3-256"
	SHA3_512 Algorithm = "SHA3-512"
)

var ErrUnsupportedAlgorithm = errors.New("merkle: unsupported hash algorithm")

// Hash is a digest produced by one of the supported algorithms.
type Hash []byte

func newHasher(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case SHA3_512:
		return sha3.New512(), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// IsSupported reports whether algo is one of the known algorithms.
func IsSupported(algo Algorithm) bool {
	_, err := newHasher(algo)
	return err == nil
}

// HashBytes digests data with algo.
func HashBytes(data []byte, algo Algorithm) (Hash, error) {
	h, err := newHasher(algo)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// HashConcat digests left immediately followed by right, with no separator
// and no length prefix between them.
func HashConcat(left, right Hash, algo Algorithm) (Hash, error) {
	h, err := newHasher(algo)
	if err != nil {
		return nil, err
	}
	h.Write(left)
	h.Write(right)
	return h.Sum(nil), nil
}

// ConstantTimeEqual compares a and b in a manner that does not branch on the
// value of any matching byte. It short-circuits only when the lengths
// differ, which is never itself secret.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := range a {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
