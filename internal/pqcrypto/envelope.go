package pqcrypto

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"log"
	"time"
)

var ErrMalformedEnvelope = errors.New("pqcrypto: malformed envelope")

// Envelope is the hybrid PQ-sealed container: an ML-KEM encapsulated key
// plus an AES-256-GCM sealed payload derived from the resulting shared
// secret.
type Envelope struct {
	EncapsulatedKey []byte
	SealedPayload   []byte
	Timestamp       time.Time
	// Nonce is carried on the wire for replay-detection callers to use; the
	// envelope layer itself never reads it.
	Nonce string
}

// SealFor encapsulates against pub — an ExportPublic-produced
// SubjectPublicKeyInfo encoding — derives an AEAD key from the resulting
// shared secret, and seals plaintext with it.
func SealFor(pub, plaintext []byte) (*Envelope, error) {
	ct, ss, err := Encapsulate(pub)
	if err != nil {
		return nil, err
	}
	key, err := DeriveAEADKey(ss, nil)
	if err != nil {
		return nil, err
	}
	sealed, err := Seal(key, plaintext)
	if err != nil {
		return nil, err
	}
	return &Envelope{EncapsulatedKey: ct, SealedPayload: sealed, Timestamp: time.Now().UTC()}, nil
}

// OpenWith decapsulates env's encapsulated key with kp, re-derives the AEAD
// key, and opens the sealed payload.
func OpenWith(kp *KeyPair, env *Envelope) ([]byte, error) {
	ss, err := kp.Decapsulate(env.EncapsulatedKey)
	if err != nil {
		return nil, err
	}
	key, err := DeriveAEADKey(ss, nil)
	if err != nil {
		return nil, err
	}
	plaintext, err := Open(key, env.SealedPayload)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) && perr.Code == CodeAuthenticationFailed {
			log.Printf("WARN pqcrypto: authentication tag verification failed - potential tampering detected")
		}
		return nil, err
	}
	return plaintext, nil
}

// MarshalBinary encodes env as u32_be(len(encapsulatedKey)) ‖ encapsulatedKey ‖ sealedPayload.
func (env *Envelope) MarshalBinary() ([]byte, error) {
	out := make([]byte, 4+len(env.EncapsulatedKey)+len(env.SealedPayload))
	binary.BigEndian.PutUint32(out[:4], uint32(len(env.EncapsulatedKey)))
	copy(out[4:], env.EncapsulatedKey)
	copy(out[4+len(env.EncapsulatedKey):], env.SealedPayload)
	return out, nil
}

// UnmarshalBinary decodes the framing MarshalBinary produces.
func (env *Envelope) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return ErrMalformedEnvelope
	}
	n := binary.BigEndian.Uint32(data[:4])
	if uint32(len(data)-4) < n {
		return ErrMalformedEnvelope
	}
	env.EncapsulatedKey = append([]byte{}, data[4:4+n]...)
	env.SealedPayload = append([]byte{}, data[4+n:]...)
	return nil
}

// WireEnvelope is the JSON transport shape of an Envelope, matching the
// verification request contract.
type WireEnvelope struct {
	EncapsulatedKey string `json:"encapsulatedKey"`
	EncryptedPayload string `json:"encryptedPayload"`
	Timestamp       int64  `json:"timestamp"`
	Nonce           string `json:"nonce,omitempty"`
}

// ToWire renders env as its base64-encoded JSON transport shape.
func (env *Envelope) ToWire() WireEnvelope {
	return WireEnvelope{
		EncapsulatedKey:  base64.StdEncoding.EncodeToString(env.EncapsulatedKey),
		EncryptedPayload: base64.StdEncoding.EncodeToString(env.SealedPayload),
		Timestamp:        env.Timestamp.UnixMilli(),
		Nonce:            env.Nonce,
	}
}

// FromWire parses a WireEnvelope back into an Envelope. Decode failures are
// reported as a CodeInvalidCiphertext *Error so callers can surface the
// same CRYPTO_* taxonomy as every other envelope failure.
func FromWire(w WireEnvelope) (*Envelope, error) {
	ct, err := base64.StdEncoding.DecodeString(w.EncapsulatedKey)
	if err != nil {
		return nil, wrap(CodeInvalidCiphertext, ErrMalformedEnvelope)
	}
	sealed, err := base64.StdEncoding.DecodeString(w.EncryptedPayload)
	if err != nil {
		return nil, wrap(CodeInvalidCiphertext, ErrMalformedEnvelope)
	}
	return &Envelope{
		EncapsulatedKey: ct,
		SealedPayload:   sealed,
		Timestamp:       time.UnixMilli(w.Timestamp).UTC(),
		Nonce:           w.Nonce,
	}, nil
}
