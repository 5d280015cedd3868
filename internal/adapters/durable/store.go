// Package durable defines the persistent season-stats store interface and
// its implementations.
package durable

import (
	"context"

	"github.com/okian/courtside/internal/domain/model"
)

// Store holds authoritative season totals and roster names. Aggregates are
// keyed by (subject, season); upserts replace the whole row.
type Store interface {
	// ReadSeasonStats returns a subject's season totals. found is false
	// when no row exists; the zero aggregate is returned in that case.
	ReadSeasonStats(ctx context.Context, sub model.Subject, season string) (agg model.Aggregate, found bool, err error)

	// UpsertSeasonStats inserts or replaces a subject's season totals.
	UpsertSeasonStats(ctx context.Context, sub model.Subject, season string, agg model.Aggregate) error

	// PlayerNames returns the full player id -> display name mapping.
	PlayerNames(ctx context.Context) (map[int64]string, error)

	// TeamNames returns the full team id -> display name mapping.
	TeamNames(ctx context.Context) (map[int64]string, error)
}
