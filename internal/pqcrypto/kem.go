package pqcrypto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/google/uuid"
)

// ParameterSet identifies one of the three standardized ML-KEM parameter
// sets. MLKEM768 is the default: NIST security level 3.
type ParameterSet string

const (
	MLKEM512  ParameterSet = "ML-KEM-512"
	MLKEM768  ParameterSet = "ML-KEM-768"
	MLKEM1024 ParameterSet = "ML-KEM-1024"

	DefaultParameterSet = MLKEM768
)

func (p ParameterSet) scheme() (kem.Scheme, error) {
	switch p {
	case MLKEM512:
		return mlkem512.Scheme(), nil
	case MLKEM768:
		return mlkem768.Scheme(), nil
	case MLKEM1024:
		return mlkem1024.Scheme(), nil
	default:
		return nil, fmt.Errorf("unknown parameter set %q", p)
	}
}

// ResolveParameterSet maps a configured parameter-set name to a known
// ParameterSet. An unrecognized value falls back to DefaultParameterSet; in
// strict mode it is a hard error instead, since a silent fallback there
// could mask a production misconfiguration.
func ResolveParameterSet(name string, strict bool) (ParameterSet, error) {
	switch ParameterSet(name) {
	case MLKEM512, MLKEM768, MLKEM1024:
		return ParameterSet(name), nil
	}
	if strict {
		return "", wrap(CodeUnsupportedParamSet, fmt.Errorf("unknown parameter set %q", name))
	}
	log.Printf("pqcrypto: unknown parameter set %q, falling back to %s", name, DefaultParameterSet)
	return DefaultParameterSet, nil
}

// KeyPair is a generated or loaded ML-KEM key pair.
type KeyPair struct {
	ParameterSet ParameterSet
	Scheme       kem.Scheme
	Public       kem.PublicKey
	Private      kem.PrivateKey
	KeyID        uuid.UUID
	GeneratedAt  time.Time
}

var ErrSchemeMismatch = errors.New("pqcrypto: key material does not match requested parameter set")

// GenerateKeyPair creates a fresh key pair for the given parameter set,
// reading randomness from crypto/rand via the underlying scheme.
func GenerateKeyPair(ps ParameterSet) (*KeyPair, error) {
	scheme, err := ps.scheme()
	if err != nil {
		return nil, wrap(CodeUnsupportedParamSet, err)
	}
	pub, priv, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, wrap(CodeKeyGenerationFailed, err)
	}
	return &KeyPair{
		ParameterSet: ps,
		Scheme:       scheme,
		Public:       pub,
		Private:      priv,
		KeyID:        uuid.New(),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// Encapsulate performs a fresh encapsulation against pub — an
// ExportPublic-produced SubjectPublicKeyInfo encoding — returning the
// ciphertext to send and the shared secret to derive an AEAD key from.
// The parameter set is recovered from pub itself rather than passed
// separately, so a mismatched caller can't silently encapsulate under the
// wrong scheme.
func Encapsulate(pub []byte) (ciphertext, sharedSecret []byte, err error) {
	_, pk, err := ImportPublic(pub)
	if err != nil {
		return nil, nil, err
	}
	scheme := pk.Scheme()
	ct, ss, err := scheme.Encapsulate(pk)
	if err != nil {
		return nil, nil, wrap(CodeEncapsulationFailed, err)
	}
	return ct, ss, nil
}

// Decapsulate recovers the shared secret established by Encapsulate.
func (kp *KeyPair) Decapsulate(ciphertext []byte) ([]byte, error) {
	ss, err := kp.Scheme.Decapsulate(kp.Private, ciphertext)
	if err != nil {
		return nil, wrap(CodeDecapsulationFailed, err)
	}
	return ss, nil
}

// Persist writes kp to w using a simple length-prefixed binary layout:
// this replaces a reflective/serialization-based format with the KEM's own
// standardized key encodings plus explicit length prefixes, so the format
// is stable across library versions.
func (kp *KeyPair) Persist(w io.Writer) error {
	pubBytes, err := kp.Public.MarshalBinary()
	if err != nil {
		return wrap(CodeInvalidPublicKey, err)
	}
	privBytes, err := kp.Private.MarshalBinary()
	if err != nil {
		return wrap(CodeInvalidPrivateKey, err)
	}

	var header [4]byte
	paramBytes := []byte(kp.ParameterSet)

	binary.BigEndian.PutUint32(header[:], uint32(len(paramBytes)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(paramBytes); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(header[:], uint32(len(pubBytes)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(pubBytes); err != nil {
		return err
	}

	binary.BigEndian.PutUint32(header[:], uint32(len(privBytes)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(privBytes); err != nil {
		return err
	}

	keyIDBytes, _ := kp.KeyID.MarshalBinary()
	if _, err := w.Write(keyIDBytes); err != nil {
		return err
	}

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(kp.GeneratedAt.Unix()))
	if _, err := w.Write(tsBuf[:]); err != nil {
		return err
	}
	return nil
}

// LoadKeyPair reads back a key pair written by Persist.
func LoadKeyPair(r io.Reader) (*KeyPair, error) {
	paramBytes, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	ps := ParameterSet(paramBytes)
	scheme, err := ps.scheme()
	if err != nil {
		return nil, wrap(CodeUnsupportedParamSet, err)
	}

	pubBytes, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	pub, err := scheme.UnmarshalBinaryPublicKey(pubBytes)
	if err != nil {
		return nil, wrap(CodeInvalidPublicKey, err)
	}

	privBytes, err := readLenPrefixed(r)
	if err != nil {
		return nil, err
	}
	priv, err := scheme.UnmarshalBinaryPrivateKey(privBytes)
	if err != nil {
		return nil, wrap(CodeInvalidPrivateKey, err)
	}

	var keyIDBuf [16]byte
	if _, err := io.ReadFull(r, keyIDBuf[:]); err != nil {
		return nil, err
	}
	keyID, err := uuid.FromBytes(keyIDBuf[:])
	if err != nil {
		return nil, err
	}

	var tsBuf [8]byte
	if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
		return nil, err
	}
	generatedAt := time.Unix(int64(binary.BigEndian.Uint64(tsBuf[:])), 0).UTC()

	return &KeyPair{
		ParameterSet: ps,
		Scheme:       scheme,
		Public:       pub,
		Private:      priv,
		KeyID:        keyID,
		GeneratedAt:  generatedAt,
	}, nil
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
