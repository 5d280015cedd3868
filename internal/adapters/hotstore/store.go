// Package hotstore defines the volatile key-value store interface and its
// implementations.
//
// The in-memory implementation serves tests and single-instance mode; the
// Redis implementation is used in production. Aggregation correctness rests
// on HashIncrBy being atomic per field.
package hotstore

import (
	"context"
	"time"
)

// Store provides the keyed operations the aggregation engine needs.
// Absent keys are not errors: hash reads return empty maps, set reads
// return empty slices.
type Store interface {
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// HashGetAll returns all fields of a hash, or an empty map.
	HashGetAll(ctx context.Context, key string) (map[string]string, error)

	// HashSetAll writes all given fields of a hash.
	HashSetAll(ctx context.Context, key string, fields map[string]string) error

	// HashSet writes a single hash field.
	HashSet(ctx context.Context, key, field, value string) error

	// HashIncrBy atomically increments one integer hash field.
	HashIncrBy(ctx context.Context, key, field string, delta int64) error

	// HashSetIfAbsent writes a hash field only if it does not exist.
	// Returns true if this call created the field. This is the atomic
	// primitive behind once-per-game marking.
	HashSetIfAbsent(ctx context.Context, key, field, value string) (bool, error)

	// Set writes a plain string value.
	Set(ctx context.Context, key, value string) error

	// Expire applies or resets a ttl on key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// SetAdd adds members to a set.
	SetAdd(ctx context.Context, key string, members ...string) error

	// SetMembers returns all members of a set, or an empty slice.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns all live keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
