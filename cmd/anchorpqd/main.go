package main

import (
	"log"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/config"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/infra/cache"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/infra/db"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/infra/httpapi"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/infra/keys"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/pqcrypto"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/verify"
)

func main() {
	cfg := config.FromEnv()

	parameterSet, err := pqcrypto.ResolveParameterSet(cfg.KEMParameterSet, cfg.KEMStrict)
	if err != nil {
		log.Fatalf("failed to resolve KEM parameter set: %v", err)
	}

	keyPair, err := keys.LoadOrGenerate(cfg.KEMKeyFilePath, parameterSet)
	if err != nil {
		log.Fatalf("failed to load or generate key pair: %v", err)
	}

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if store.DB == nil {
		log.Fatalf("POSTGRES_DSN is required to run anchorpqd")
	}

	var repo verify.CanonicalRecordRepository = db.NewCanonicalRecordRepository(store)
	if cfg.RedisAddr != "" {
		repo = cache.New(repo, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	verifier := verify.NewVerifier(repo)

	srv := httpapi.NewServer(cfg, keyPair, verifier)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
