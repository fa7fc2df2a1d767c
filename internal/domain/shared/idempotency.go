package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled: processed
// event IDs and client Idempotency-Key headers on payment submission.
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release forgets a key, used when the guarded operation failed
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls how long handled keys are remembered
type IdempotencyConfig struct {
	// TTL after which the same key is accepted again
	TTL time.Duration
	// Enabled turns deduplication on; handlers run directly when false
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
