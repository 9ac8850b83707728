package db

import (
	"context"
	"errors"
	"time"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CanonicalRecordRepository is the Postgres-backed implementation of
// verify.CanonicalRecordRepository.
type CanonicalRecordRepository struct {
	db *gorm.DB
}

func NewCanonicalRecordRepository(store *Store) *CanonicalRecordRepository {
	return &CanonicalRecordRepository{db: store.DB}
}

func (r *CanonicalRecordRepository) FindActive(ctx context.Context, version, variant string) (*domain.CanonicalRecord, error) {
	var row canonicalRecordModel
	err := r.db.WithContext(ctx).
		Where("version = ? AND variant = ? AND active = ?", version, variant, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := toDomain(row)
	return &rec, nil
}

func (r *CanonicalRecordRepository) SaveOrUpdate(ctx context.Context, rec domain.CanonicalRecord) (domain.CanonicalRecord, error) {
	row := fromDomain(rec)
	row.Active = true
	now := time.Now().UTC()
	if row.RegisteredAt.IsZero() {
		row.RegisteredAt = now
	}
	row.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version"}, {Name: "variant"}},
		DoUpdates: clause.AssignmentColumns([]string{"merkle_root_hex", "signer_fingerprint", "active", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return domain.CanonicalRecord{}, err
	}
	return toDomain(row), nil
}

func (r *CanonicalRecordRepository) Deactivate(ctx context.Context, version, variant string) error {
	return r.db.WithContext(ctx).Model(&canonicalRecordModel{}).
		Where("version = ? AND variant = ?", version, variant).
		Updates(map[string]any{"active": false, "updated_at": time.Now().UTC()}).Error
}

func toDomain(row canonicalRecordModel) domain.CanonicalRecord {
	return domain.CanonicalRecord{
		Version:           row.Version,
		Variant:           row.Variant,
		MerkleRootHex:     row.MerkleRootHex,
		SignerFingerprint: row.SignerFingerprint,
		Active:            row.Active,
		RegisteredAt:      row.RegisteredAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func fromDomain(rec domain.CanonicalRecord) canonicalRecordModel {
	return canonicalRecordModel{
		Version:           rec.Version,
		Variant:           rec.Variant,
		MerkleRootHex:     rec.MerkleRootHex,
		SignerFingerprint: rec.SignerFingerprint,
		Active:            rec.Active,
		RegisteredAt:      rec.RegisteredAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}
