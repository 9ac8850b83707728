package db

import "time"

// canonicalRecordModel is the gorm row shape for a domain.CanonicalRecord.
// Kept separate from the domain type so storage concerns (column names,
// indices) never leak into internal/verify's interface.
type canonicalRecordModel struct {
	Version           string `gorm:"primaryKey;size:64"`
	Variant           string `gorm:"primaryKey;size:64"`
	MerkleRootHex     string `gorm:"size:128;not null"`
	SignerFingerprint string `gorm:"size:128"`
	Active            bool   `gorm:"not null;default:true"`
	RegisteredAt      time.Time
	UpdatedAt         time.Time
}

func (canonicalRecordModel) TableName() string { return "canonical_records" }
