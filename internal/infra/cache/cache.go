// Package cache wraps a CanonicalRecordRepository with a Redis
// write-through cache, so that repeated lookups for the same (version,
// variant) don't all hit Postgres.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/domain"
	"github.com/namanONcode/AndroidPostQuantumIntegrityFramework/internal/verify"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// Repository decorates an underlying verify.CanonicalRecordRepository with
// a Redis cache. FindActive reads through the cache; SaveOrUpdate and
// Deactivate both write to the underlying store first, then update or
// evict the cached entry so a following read never observes stale data.
type Repository struct {
	underlying verify.CanonicalRecordRepository
	client     *redis.Client
	ttl        time.Duration
}

func New(underlying verify.CanonicalRecordRepository, addr, password string, db int) *Repository {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &Repository{underlying: underlying, client: client, ttl: defaultTTL}
}

func cacheKey(version, variant string) string {
	return "anchorpq:canonical:" + version + ":" + variant
}

func (r *Repository) FindActive(ctx context.Context, version, variant string) (*domain.CanonicalRecord, error) {
	key := cacheKey(version, variant)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var rec domain.CanonicalRecord
		if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil {
			return &rec, nil
		}
	}

	rec, err := r.underlying.FindActive(ctx, version, variant)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if data, err := json.Marshal(rec); err == nil {
		r.client.Set(ctx, key, data, r.ttl)
	}
	return rec, nil
}

func (r *Repository) SaveOrUpdate(ctx context.Context, rec domain.CanonicalRecord) (domain.CanonicalRecord, error) {
	saved, err := r.underlying.SaveOrUpdate(ctx, rec)
	if err != nil {
		return domain.CanonicalRecord{}, err
	}
	key := cacheKey(saved.Version, saved.Variant)
	if data, err := json.Marshal(saved); err == nil {
		r.client.Set(ctx, key, data, r.ttl)
	}
	return saved, nil
}

func (r *Repository) Deactivate(ctx context.Context, version, variant string) error {
	if err := r.underlying.Deactivate(ctx, version, variant); err != nil {
		return err
	}
	r.client.Del(ctx, cacheKey(version, variant))
	return nil
}
