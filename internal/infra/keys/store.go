// Package keys persists the server's ML-KEM key pair to disk, loading it
// on startup if present and generating + saving a fresh one otherwise.
package keys

import (
	"fmt"
	"log"
	"os"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/pqcrypto"
)

// LoadOrGenerate reads the key pair at path if it exists, otherwise
// generates a fresh one for parameterSet and persists it to path. A load
// failure against an existing file — a truncated or corrupted key, or one
// written under an unknown parameter set — is not fatal: the caller falls
// back to generating a fresh key pair and re-persists it to path.
func LoadOrGenerate(path string, parameterSet pqcrypto.ParameterSet) (*pqcrypto.KeyPair, error) {
	if f, err := os.Open(path); err == nil {
		kp, loadErr := pqcrypto.LoadKeyPair(f)
		f.Close()
		if loadErr == nil {
			return kp, nil
		}
		log.Printf("keys: failed to load key pair from %s, falling back to generation: %v", path, loadErr)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	kp, err := pqcrypto.GenerateKeyPair(parameterSet)
	if err != nil {
		return nil, err
	}
	if err := Save(path, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// Save persists kp to path, creating or truncating it, with owner-only
// permissions since the file contains the private key.
func Save(path string, kp *pqcrypto.KeyPair) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	defer f.Close()

	if err := kp.Persist(f); err != nil {
		return fmt.Errorf("persist key pair to %s: %w", path, err)
	}
	return nil
}
