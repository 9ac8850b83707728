package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"
)

type stubRepo struct {
	records map[string]domain.CanonicalRecord
	calls   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: map[string]domain.CanonicalRecord{}}
}

func key(version, variant string) string { return version + "/" + variant }

func (r *stubRepo) FindActive(ctx context.Context, version, variant string) (*domain.CanonicalRecord, error) {
	r.calls++
	rec, ok := r.records[key(version, variant)]
	if !ok || !rec.Active {
		return nil, nil
	}
	return &rec, nil
}

func (r *stubRepo) SaveOrUpdate(ctx context.Context, rec domain.CanonicalRecord) (domain.CanonicalRecord, error) {
	rec.Active = true
	r.records[key(rec.Version, rec.Variant)] = rec
	return rec, nil
}

func (r *stubRepo) Deactivate(ctx context.Context, version, variant string) error {
	rec, ok := r.records[key(version, variant)]
	if !ok {
		return nil
	}
	rec.Active = false
	r.records[key(version, variant)] = rec
	return nil
}

const root64 = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
const signer64 = "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

func TestVerifyIntegrity_Approved(t *testing.T) {
	repo := newStubRepo()
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: root64, SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED, got %s (%s)", decision.Status, decision.Message)
	}
	if decision.ErrorCode != "" {
		t.Fatalf("expected no error code on approval")
	}
}

func TestVerifyIntegrity_UnknownVersionTakesPrecedence(t *testing.T) {
	repo := newStubRepo()
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "9.9", Variant: "release", MerkleRoot: root64, SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRejected || decision.ErrorCode != domain.ErrCodeUnknownVersion {
		t.Fatalf("expected REJECTED/ERR_UNKNOWN_VERSION, got %s/%s", decision.Status, decision.ErrorCode)
	}
}

func TestVerifyIntegrity_MerkleMismatchPrecedesSignerMismatch(t *testing.T) {
	repo := newStubRepo()
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	wrongRoot := strings.Repeat("f", 64)
	wrongSigner := strings.Repeat("9", 64)
	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: wrongRoot, SignerFingerprint: wrongSigner,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRejected || decision.ErrorCode != domain.ErrCodeMerkleMismatch {
		t.Fatalf("expected REJECTED/ERR_MERKLE_MISMATCH, got %s/%s", decision.Status, decision.ErrorCode)
	}
}

func TestVerifyIntegrity_SignerMismatchRestricts(t *testing.T) {
	repo := newStubRepo()
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	otherSigner := strings.Repeat("a", 64)
	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: root64, SignerFingerprint: otherSigner,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRestricted {
		t.Fatalf("expected RESTRICTED, got %s", decision.Status)
	}
	if decision.ErrorCode != "" {
		t.Fatalf("expected RESTRICTED to carry no error code, got %q", decision.ErrorCode)
	}
}

func TestVerifyIntegrity_CaseInsensitiveHexMatches(t *testing.T) {
	repo := newStubRepo()
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: strings.ToUpper(root64), SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED for case-insensitive match, got %s", decision.Status)
	}
}

func TestVerifyIntegrity_MalformedPayloadRejectedBeforeLookup(t *testing.T) {
	repo := newStubRepo()
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: "not-hex",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRejected || decision.ErrorCode != domain.ErrCodeInvalidRequest {
		t.Fatalf("expected REJECTED/ERR_INVALID_REQUEST, got %s/%s", decision.Status, decision.ErrorCode)
	}
	if repo.calls != 0 {
		t.Fatalf("expected malformed payload to be rejected without a repository lookup")
	}
}

func TestVerifyIntegrity_OversizedVersionRejectedBeforeLookup(t *testing.T) {
	repo := newStubRepo()
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: strings.Repeat("v", maxVersionLen+1), Variant: "release", MerkleRoot: root64, SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRejected || decision.ErrorCode != domain.ErrCodeInvalidRequest {
		t.Fatalf("expected REJECTED/ERR_INVALID_REQUEST, got %s/%s", decision.Status, decision.ErrorCode)
	}
	if repo.calls != 0 {
		t.Fatalf("expected oversized version to be rejected without a repository lookup")
	}
}

func TestVerifyIntegrity_OversizedVariantRejectedBeforeLookup(t *testing.T) {
	repo := newStubRepo()
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: "1.0", Variant: strings.Repeat("v", maxVariantLen+1), MerkleRoot: root64, SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusRejected || decision.ErrorCode != domain.ErrCodeInvalidRequest {
		t.Fatalf("expected REJECTED/ERR_INVALID_REQUEST, got %s/%s", decision.Status, decision.ErrorCode)
	}
	if repo.calls != 0 {
		t.Fatalf("expected oversized variant to be rejected without a repository lookup")
	}
}

func TestVerifyIntegrity_MaxLengthVersionAndVariantAccepted(t *testing.T) {
	repo := newStubRepo()
	version := strings.Repeat("v", maxVersionLen)
	variant := strings.Repeat("r", maxVariantLen)
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: version, Variant: variant, MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	decision, err := v.VerifyIntegrity(context.Background(), domain.IntegrityPayload{
		Version: version, Variant: variant, MerkleRoot: root64, SignerFingerprint: signer64,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if decision.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED at the exact length bound, got %s", decision.Status)
	}
}

func TestVerifyIntegrity_ReFetchesEveryCall(t *testing.T) {
	repo := newStubRepo()
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root64, SignerFingerprint: signer64,
	})
	v := NewVerifier(repo)

	payload := domain.IntegrityPayload{Version: "1.0", Variant: "release", MerkleRoot: root64, SignerFingerprint: signer64}
	if _, err := v.VerifyIntegrity(context.Background(), payload); err != nil {
		t.Fatalf("verify 1: %v", err)
	}
	if _, err := v.VerifyIntegrity(context.Background(), payload); err != nil {
		t.Fatalf("verify 2: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected 2 independent lookups, got %d", repo.calls)
	}
}
