package db

import (
	"fmt"
	"log"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store holds the database handle repositories are built on top of. A nil
// DB means the process is running in no-db mode, which cmd/anchorpqd
// rejects at startup rather than papering over with in-memory state.
type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Printf("POSTGRES_DSN not set; starting in no-db mode.")
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := gdb.AutoMigrate(&canonicalRecordModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{DB: gdb}, nil
}
