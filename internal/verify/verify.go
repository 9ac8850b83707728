// Package verify implements the Verification Core: the deterministic state
// machine that turns an opened IntegrityPayload into a Decision by
// comparing it against the canonical record for its (version, variant).
package verify

import (
	"context"
	"regexp"
	"strings"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/merkle"
)

// CanonicalRecordRepository is the storage boundary the Verification Core
// depends on. FindActive returns (nil, nil) when no active record exists
// for the given key — callers never need a sentinel error for the common
// "unknown version" case.
type CanonicalRecordRepository interface {
	FindActive(ctx context.Context, version, variant string) (*domain.CanonicalRecord, error)
	SaveOrUpdate(ctx context.Context, record domain.CanonicalRecord) (domain.CanonicalRecord, error)
	Deactivate(ctx context.Context, version, variant string) error
}

var hexPattern = regexp.MustCompile(`^[0-9A-Fa-f]{64}$`)

const (
	maxVersionLen = 50
	maxVariantLen = 30
)

// Verifier runs the Verification Core against a CanonicalRecordRepository.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	Repo CanonicalRecordRepository
}

func NewVerifier(repo CanonicalRecordRepository) *Verifier {
	return &Verifier{Repo: repo}
}

// VerifyIntegrity runs the Received → Looked-Up → Compared → Decided state
// machine against payload. The core re-fetches the canonical record on
// every call; it never caches results across requests.
func (v *Verifier) VerifyIntegrity(ctx context.Context, payload domain.IntegrityPayload) (domain.Decision, error) {
	if !isValidPayload(payload) {
		return domain.Rejected("malformed integrity payload", domain.ErrCodeInvalidRequest), nil
	}

	record, err := v.Repo.FindActive(ctx, payload.Version, payload.Variant)
	if err != nil {
		return domain.Decision{}, err
	}
	if record == nil {
		return domain.Rejected("unknown application version or variant", domain.ErrCodeUnknownVersion), nil
	}

	if !constantTimeEqualHex(payload.MerkleRoot, record.MerkleRootHex) {
		return domain.Rejected("merkle root does not match the canonical build", domain.ErrCodeMerkleMismatch), nil
	}

	if !constantTimeEqualHex(payload.SignerFingerprint, record.SignerFingerprint) {
		return domain.Restricted("signer fingerprint does not match the canonical build"), nil
	}

	return domain.Approved("integrity verified"), nil
}

func isValidPayload(p domain.IntegrityPayload) bool {
	if p.Version == "" || p.Variant == "" {
		return false
	}
	if len(p.Version) > maxVersionLen || len(p.Variant) > maxVariantLen {
		return false
	}
	if !hexPattern.MatchString(p.MerkleRoot) {
		return false
	}
	if !hexPattern.MatchString(p.SignerFingerprint) {
		return false
	}
	return true
}

// constantTimeEqualHex compares two hex strings without branching on the
// value of any matching character, after folding both to lowercase.
func constantTimeEqualHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return merkle.ConstantTimeEqual([]byte(la), []byte(lb))
}
