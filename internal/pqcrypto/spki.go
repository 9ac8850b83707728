package pqcrypto

import (
	"encoding/asn1"
	"fmt"

	"github.com/cloudflare/circl/kem"
)

// algorithmIdentifier mirrors the AlgorithmIdentifier structure from RFC
// 5280's SubjectPublicKeyInfo: an OID naming the exact algorithm, with no
// parameters since the ML-KEM OIDs below are parameter-set-specific.
type algorithmIdentifier struct {
	Algorithm asn1.ObjectIdentifier
}

// subjectPublicKeyInfo is the standard portable wrapper a public key is
// exchanged in, so import_public can recover the parameter set it was
// generated under from the bytes alone instead of requiring the caller to
// carry it out-of-band.
type subjectPublicKeyInfo struct {
	Algorithm        algorithmIdentifier
	SubjectPublicKey asn1.BitString
}

// parameterSetOIDs are the IANA-registered ML-KEM algorithm identifiers
// (NIST's 2.16.840.1.101.3.4.4 arc).
var parameterSetOIDs = map[ParameterSet]asn1.ObjectIdentifier{
	MLKEM512:  {2, 16, 840, 1, 101, 3, 4, 4, 1},
	MLKEM768:  {2, 16, 840, 1, 101, 3, 4, 4, 2},
	MLKEM1024: {2, 16, 840, 1, 101, 3, 4, 4, 3},
}

func oidForParameterSet(ps ParameterSet) (asn1.ObjectIdentifier, error) {
	oid, ok := parameterSetOIDs[ps]
	if !ok {
		return nil, fmt.Errorf("no OID registered for parameter set %q", ps)
	}
	return oid, nil
}

func parameterSetForOID(oid asn1.ObjectIdentifier) (ParameterSet, error) {
	for ps, candidate := range parameterSetOIDs {
		if candidate.Equal(oid) {
			return ps, nil
		}
	}
	return "", fmt.Errorf("unrecognized ML-KEM algorithm OID %s", oid)
}

// ExportPublic returns kp's public key wrapped in a SubjectPublicKeyInfo
// DER encoding: an algorithm identifier naming kp's exact parameter set,
// plus the scheme's raw public-key encoding as the BIT STRING payload.
// The result is self-describing — ImportPublic recovers the parameter set
// from the bytes alone.
func (kp *KeyPair) ExportPublic() ([]byte, error) {
	raw, err := kp.Public.MarshalBinary()
	if err != nil {
		return nil, wrap(CodeInvalidPublicKey, err)
	}
	oid, err := oidForParameterSet(kp.ParameterSet)
	if err != nil {
		return nil, wrap(CodeUnsupportedParamSet, err)
	}
	der, err := asn1.Marshal(subjectPublicKeyInfo{
		Algorithm:        algorithmIdentifier{Algorithm: oid},
		SubjectPublicKey: asn1.BitString{Bytes: raw, BitLength: len(raw) * 8},
	})
	if err != nil {
		return nil, wrap(CodeInvalidPublicKey, err)
	}
	return der, nil
}

// ImportPublic parses a SubjectPublicKeyInfo encoding produced by
// ExportPublic, returning the parameter set the key was generated under
// and the scheme's public key. A structural malformation, a trailing
// trailer, or an OID the scheme registry doesn't recognize all fail with
// CodeInvalidPublicKey.
func ImportPublic(data []byte) (ParameterSet, kem.PublicKey, error) {
	var spki subjectPublicKeyInfo
	rest, err := asn1.Unmarshal(data, &spki)
	if err != nil {
		return "", nil, wrap(CodeInvalidPublicKey, err)
	}
	if len(rest) != 0 {
		return "", nil, wrap(CodeInvalidPublicKey, fmt.Errorf("trailing data after subject public key info"))
	}

	ps, err := parameterSetForOID(spki.Algorithm.Algorithm)
	if err != nil {
		return "", nil, wrap(CodeInvalidPublicKey, err)
	}
	scheme, err := ps.scheme()
	if err != nil {
		return "", nil, wrap(CodeUnsupportedParamSet, err)
	}
	pk, err := scheme.UnmarshalBinaryPublicKey(spki.SubjectPublicKey.Bytes)
	if err != nil {
		return "", nil, wrap(CodeInvalidPublicKey, err)
	}
	return ps, pk, nil
}
