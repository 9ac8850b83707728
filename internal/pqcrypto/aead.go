package pqcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// Seal encrypts plaintext under key with a fresh random nonce and returns
// the wire layout IV‖CIPHERTEXT‖TAG (the tag is appended by Go's GCM
// implementation as part of the ciphertext it returns).
func Seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrap(CodeEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, wrap(CodeEncryptionFailed, err)
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, wrap(CodeEncryptionFailed, err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Open reverses Seal. A failed authentication check is reported as
// CodeAuthenticationFailed without revealing which byte of the tag or
// ciphertext caused the mismatch.
func Open(key, sealed []byte) ([]byte, error) {
	if len(sealed) < gcmNonceSize+gcmTagSize {
		return nil, wrap(CodeInvalidCiphertext, fmt.Errorf("sealed payload too short"))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrap(CodeDecryptionFailed, err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, wrap(CodeDecryptionFailed, err)
	}

	nonce := sealed[:gcmNonceSize]
	ciphertext := sealed[gcmNonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, wrap(CodeAuthenticationFailed, fmt.Errorf("authentication tag verification failed"))
	}
	return plaintext, nil
}
