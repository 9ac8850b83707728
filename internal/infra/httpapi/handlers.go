package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/pqcrypto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// cryptoErrorCode extracts the stable CRYPTO_* code carried on a
// *pqcrypto.Error so it propagates to the caller unchanged, falling back to
// the generic crypto code for errors pqcrypto didn't tag.
func cryptoErrorCode(err error) string {
	var pqErr *pqcrypto.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return domain.ErrCodeCrypto
}

var validate = validator.New()

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type publicKeyResponse struct {
	PublicKey    string `json:"publicKey"`
	ParameterSet string `json:"parameterSet"`
	Algorithm    string `json:"algorithm"`
	GeneratedAt  int64  `json:"generatedAt"` // milliseconds since the Unix epoch
	KeyID        string `json:"keyId"`
}

func (s *Server) handlePublicKey(c *gin.Context) {
	pub, err := s.keyPair.ExportPublic()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Code: domain.ErrCodeInternal, Message: "failed to export public key"})
		return
	}
	c.JSON(http.StatusOK, publicKeyResponse{
		PublicKey:    encodeBase64(pub),
		ParameterSet: string(s.keyPair.ParameterSet),
		Algorithm:    "ML-KEM",
		GeneratedAt:  s.keyPair.GeneratedAt.UnixMilli(),
		KeyID:        s.keyPair.KeyID.String(),
	})
}

type verificationRequest struct {
	EncapsulatedKey  string `json:"encapsulatedKey" validate:"required"`
	EncryptedPayload string `json:"encryptedPayload" validate:"required"`
	Timestamp        int64  `json:"timestamp" validate:"required"`
	Nonce            string `json:"nonce"`
}

type verificationResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the Unix epoch
	ErrorCode string `json:"errorCode,omitempty"`
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: domain.ErrCodeInvalidRequest, Message: err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: domain.ErrCodeInvalidRequest, Message: err.Error()})
		return
	}

	env, err := pqcrypto.FromWire(pqcrypto.WireEnvelope{
		EncapsulatedKey:  req.EncapsulatedKey,
		EncryptedPayload: req.EncryptedPayload,
		Timestamp:        req.Timestamp,
		Nonce:            req.Nonce,
	})
	if err != nil {
		s.metrics.decisions.WithLabelValues(string(domain.StatusRejected)).Inc()
		c.JSON(http.StatusOK, verificationResponse{
			Status: string(domain.StatusRejected), Message: "malformed envelope",
			Timestamp: time.Now().UnixMilli(), ErrorCode: cryptoErrorCode(err),
		})
		return
	}

	plaintext, err := pqcrypto.OpenWith(s.keyPair, env)
	if err != nil {
		s.metrics.decisions.WithLabelValues(string(domain.StatusRejected)).Inc()
		c.JSON(http.StatusOK, verificationResponse{
			Status: string(domain.StatusRejected), Message: "failed to open envelope",
			Timestamp: time.Now().UnixMilli(), ErrorCode: cryptoErrorCode(err),
		})
		return
	}

	var payload domain.IntegrityPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		s.metrics.decisions.WithLabelValues(string(domain.StatusRejected)).Inc()
		c.JSON(http.StatusOK, verificationResponse{
			Status: string(domain.StatusRejected), Message: "malformed integrity payload",
			Timestamp: time.Now().UnixMilli(), ErrorCode: domain.ErrCodeInvalidRequest,
		})
		return
	}

	decision, err := s.verifier.VerifyIntegrity(c.Request.Context(), payload)
	if err != nil {
		s.metrics.decisions.WithLabelValues(string(domain.StatusRejected)).Inc()
		c.JSON(http.StatusOK, verificationResponse{
			Status: string(domain.StatusRejected), Message: "internal error",
			Timestamp: time.Now().UnixMilli(), ErrorCode: domain.ErrCodeInternal,
		})
		return
	}

	s.metrics.decisions.WithLabelValues(string(decision.Status)).Inc()
	c.JSON(http.StatusOK, verificationResponse{
		Status:    string(decision.Status),
		Message:   decision.Message,
		Timestamp: decision.Timestamp.UnixMilli(),
		ErrorCode: decision.ErrorCode,
	})
}

type registerRecordRequest struct {
	Version           string `json:"version" validate:"required"`
	Variant           string `json:"variant" validate:"required"`
	MerkleRoot        string `json:"merkleRoot" validate:"required,hexadecimal,len=64"`
	SignerFingerprint string `json:"signerFingerprint" validate:"required,hexadecimal,len=64"`
}

func (s *Server) handleRegisterRecord(c *gin.Context) {
	var req registerRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: domain.ErrCodeInvalidRequest, Message: err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: domain.ErrCodeInvalidRequest, Message: err.Error()})
		return
	}

	rec, err := s.verifier.Repo.SaveOrUpdate(c.Request.Context(), domain.CanonicalRecord{
		Version:           req.Version,
		Variant:           req.Variant,
		MerkleRootHex:     req.MerkleRoot,
		SignerFingerprint: req.SignerFingerprint,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Code: domain.ErrCodeInternal, Message: "failed to save record"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeactivateRecord(c *gin.Context) {
	version := c.Param("version")
	variant := c.Param("variant")
	if err := s.verifier.Repo.Deactivate(c.Request.Context(), version, variant); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Code: domain.ErrCodeInternal, Message: "failed to deactivate record"})
		return
	}
	c.Status(http.StatusNoContent)
}
