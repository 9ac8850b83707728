package pqcrypto

import (
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// derivationInfo is the fixed HKDF info string binding derived keys to this
// protocol and version, so the same shared secret can never be reused for a
// different purpose.
const derivationInfo = "AnchorPQ-v1-IntegrityVerification"

const aeadKeySize = 32

// DeriveAEADKey derives a 32-byte AES-256 key from an ML-KEM shared secret.
// When salt is nil, HKDF's extract phase is skipped and sharedSecret is
// used directly as the pseudorandom key, matching the "no salt" mode of the
// underlying HKDF construction.
func DeriveAEADKey(sharedSecret, salt []byte) ([]byte, error) {
	var reader io.Reader
	if len(salt) == 0 {
		reader = hkdf.Expand(sha3.New256, sharedSecret, []byte(derivationInfo))
	} else {
		reader = hkdf.New(sha3.New256, sharedSecret, salt, []byte(derivationInfo))
	}

	key := make([]byte, aeadKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, wrap(CodeKeyDerivationFailed, err)
	}
	return key, nil
}
