package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/config"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/pqcrypto"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/verify"

	"github.com/gin-gonic/gin"
)

type memRepo struct {
	records map[string]domain.CanonicalRecord
}

func newMemRepo() *memRepo { return &memRepo{records: map[string]domain.CanonicalRecord{}} }

func (r *memRepo) FindActive(ctx context.Context, version, variant string) (*domain.CanonicalRecord, error) {
	rec, ok := r.records[version+"/"+variant]
	if !ok || !rec.Active {
		return nil, nil
	}
	return &rec, nil
}

func (r *memRepo) SaveOrUpdate(ctx context.Context, rec domain.CanonicalRecord) (domain.CanonicalRecord, error) {
	rec.Active = true
	r.records[rec.Version+"/"+rec.Variant] = rec
	return rec, nil
}

func (r *memRepo) Deactivate(ctx context.Context, version, variant string) error {
	rec, ok := r.records[version+"/"+variant]
	if ok {
		rec.Active = false
		r.records[version+"/"+variant] = rec
	}
	return nil
}

const testSignerFingerprint = "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

func newTestServer(t *testing.T) (*Server, *pqcrypto.KeyPair, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kp, err := pqcrypto.GenerateKeyPair(pqcrypto.MLKEM768)
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	repo := newMemRepo()
	verifier := verify.NewVerifier(repo)
	cfg := config.Config{AdminAPIKey: "test-admin-key"}
	return NewServer(cfg, kp, verifier), kp, repo
}

func sealedRequestBody(t *testing.T, kp *pqcrypto.KeyPair, payload domain.IntegrityPayload) []byte {
	t.Helper()
	pub, err := kp.ExportPublic()
	if err != nil {
		t.Fatalf("export public: %v", err)
	}
	plaintext, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env, err := pqcrypto.SealFor(pub, plaintext)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	wire := env.ToWire()
	body, err := json.Marshal(wire)
	if err != nil {
		t.Fatalf("marshal wire: %v", err)
	}
	return body
}

func TestHandleVerify_ApprovesKnownBuild(t *testing.T) {
	srv, kp, repo := newTestServer(t)
	root := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root, SignerFingerprint: testSignerFingerprint,
	})

	body := sealedRequestBody(t, kp, domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: root, SignerFingerprint: testSignerFingerprint,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != string(domain.StatusApproved) {
		t.Fatalf("expected APPROVED, got %s", resp.Status)
	}
}

func TestHandleVerify_MalformedEnvelopeReturns200WithCryptoCode(t *testing.T) {
	srv, _, _ := newTestServer(t)
	wire := pqcrypto.WireEnvelope{EncapsulatedKey: "not-base64!!!", EncryptedPayload: "not-base64!!!", Timestamp: 1}
	body, _ := json.Marshal(wire)
	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected transport status 200 even on a rejection, got %d", rec.Code)
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != string(domain.StatusRejected) {
		t.Fatalf("expected REJECTED, got %s", resp.Status)
	}
	if !strings.HasPrefix(resp.ErrorCode, "CRYPTO_") {
		t.Fatalf("expected a CRYPTO_* error code to propagate, got %q", resp.ErrorCode)
	}
}

func TestHandleVerify_TamperedCiphertextReturns200WithCryptoCode(t *testing.T) {
	srv, kp, repo := newTestServer(t)
	root := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	repo.SaveOrUpdate(context.Background(), domain.CanonicalRecord{
		Version: "1.0", Variant: "release", MerkleRootHex: root, SignerFingerprint: testSignerFingerprint,
	})

	body := sealedRequestBody(t, kp, domain.IntegrityPayload{
		Version: "1.0", Variant: "release", MerkleRoot: root, SignerFingerprint: testSignerFingerprint,
	})
	var wire pqcrypto.WireEnvelope
	if err := json.Unmarshal(body, &wire); err != nil {
		t.Fatalf("unmarshal sealed body: %v", err)
	}
	wire.EncryptedPayload = wire.EncryptedPayload[:len(wire.EncryptedPayload)-4] + "AAAA"
	tampered, _ := json.Marshal(wire)

	req := httptest.NewRequest(http.MethodPost, "/v1/verify", bytes.NewReader(tampered))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected transport status 200 even on a rejection, got %d", rec.Code)
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != string(domain.StatusRejected) {
		t.Fatalf("expected REJECTED, got %s", resp.Status)
	}
	if resp.ErrorCode != pqcrypto.CodeAuthenticationFailed && resp.ErrorCode != pqcrypto.CodeDecapsulationFailed {
		t.Fatalf("expected a crypto authentication/decapsulation code, got %q", resp.ErrorCode)
	}
}

func TestHandlePublicKey_ReturnsKey(t *testing.T) {
	srv, kp, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/public-key", nil)
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp publicKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.KeyID != kp.KeyID.String() {
		t.Fatalf("expected key id %s, got %s", kp.KeyID, resp.KeyID)
	}
}

func TestHandleRegisterRecord_RequiresAdminKey(t *testing.T) {
	srv, _, _ := newTestServer(t)
	body, _ := json.Marshal(registerRecordRequest{
		Version: "1.0", Variant: "release",
		MerkleRoot: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/records", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an admin key, got %d", rec.Code)
	}
}

func TestHandleRegisterRecord_WithAdminKey(t *testing.T) {
	srv, _, _ := newTestServer(t)
	body, _ := json.Marshal(registerRecordRequest{
		Version: "1.0", Variant: "release",
		MerkleRoot:        "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		SignerFingerprint: "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/records", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminAPIKeyHeader, "test-admin-key")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
