// Package cache is the ephemeral key-value layer for heartbeats, pause
// bookkeeping, call dedup and winner snapshots. It is never authoritative
// for money; losing it only degrades broadcast/idle behavior.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Store abstracts the key-value backend. Production uses Redis; tests
// use the in-memory implementation.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes a value. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX writes only if the key is absent, returning whether it wrote.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Del removes keys; missing keys are not an error.
	Del(ctx context.Context, keys ...string) error
}

// GetInt64 reads a key as an integer. Missing or malformed values
// report absent.
func GetInt64(ctx context.Context, s Store, key string) (int64, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// SetInt64 writes an integer value.
func SetInt64(ctx context.Context, s Store, key string, n int64, ttl time.Duration) error {
	return s.Set(ctx, key, strconv.FormatInt(n, 10), ttl)
}
