// Package pqcrypto implements the hybrid post-quantum envelope: an ML-KEM
// key encapsulation step, HKDF-SHA3-256 key derivation, and AES-256-GCM
// authenticated encryption, sealed together behind SealFor/OpenWith.
package pqcrypto

// Error wraps a failure from the envelope layer with a stable code, the
// same taxonomy the verification response's errorCode field is drawn from
// on the crypto side.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

const (
	CodeKeyGenerationFailed  = "CRYPTO_001"
	CodeEncapsulationFailed  = "CRYPTO_002"
	CodeDecapsulationFailed  = "CRYPTO_003"
	CodeKeyDerivationFailed  = "CRYPTO_004"
	CodeEncryptionFailed     = "CRYPTO_005"
	CodeDecryptionFailed     = "CRYPTO_006"
	CodeInvalidCiphertext    = "CRYPTO_007"
	CodeAuthenticationFailed = "CRYPTO_008"
	CodeInvalidPublicKey     = "CRYPTO_009"
	// CodeUnsupportedParamSet has no taxonomy entry of its own; it sits
	// outside the spec's reserved CRYPTO_001-CRYPTO_011 range.
	CodeUnsupportedParamSet = "CRYPTO_012"
	CodeInvalidPrivateKey   = "CRYPTO_011"
)

func wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}
