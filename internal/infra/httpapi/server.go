// Package httpapi exposes AnchorPQ's three wire contracts over gin:
// fetching the server's public key, submitting a sealed integrity
// verification request, and administering canonical records.
package httpapi

import (
	"log"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/config"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/pqcrypto"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/verify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the gin engine to the verification core, the configured key
// pair, and the admin surface over the canonical record repository.
type Server struct {
	cfg      config.Config
	engine   *gin.Engine
	keyPair  *pqcrypto.KeyPair
	verifier *verify.Verifier
	metrics  *metrics
}

func NewServer(cfg config.Config, keyPair *pqcrypto.KeyPair, verifier *verify.Verifier) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   gin.New(),
		keyPair:  keyPair,
		verifier: verifier,
		metrics:  newMetrics(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.GET("/public-key", s.handlePublicKey)
	v1.POST("/verify", s.handleVerify)

	admin := v1.Group("/admin")
	admin.Use(s.requireAdminAuth)
	admin.POST("/records", s.handleRegisterRecord)
	admin.DELETE("/records/:version/:variant", s.handleDeactivateRecord)

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Run() error {
	log.Printf("anchorpqd listening on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Engine exposes the underlying gin engine for tests that want to drive
// requests through httptest without binding a socket.
func (s *Server) Engine() *gin.Engine { return s.engine }
