// Package aggregate folds stat contributions into per-season sums held in
// the hot store, tracking divergence from the durable store with dirty
// flags.
package aggregate

import (
	"context"
	"strings"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Accumulator owns the s:<season>:<type>:<id> keys and their dirty flags.
type Accumulator struct {
	hot    hotstore.Store
	db     durable.Store
	logger logger.Logger
}

// Option applies a configuration option to the Accumulator.
type Option func(*Accumulator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Accumulator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Accumulator over the given stores.
func New(hot hotstore.Store, db durable.Store, opts ...Option) *Accumulator {
	a := &Accumulator{
		hot:    hot,
		db:     db,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureLoaded makes sure the subject's season aggregate exists in the hot
// store, copying it from the durable store on the first touch. A durable
// read failure degrades to zero defaults with a warning so ingest keeps
// working; the next successful flush re-converges the row. Re-invoking
// when the hot store already holds the aggregate performs no durable read.
func (a *Accumulator) EnsureLoaded(ctx context.Context, season string, sub model.Subject) error {
	key := model.SeasonKey(season, sub)
	exists, err := a.hot.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	agg, found, err := a.db.ReadSeasonStats(ctx, sub, season)
	if err != nil {
		a.logger.Warn(ctx, "durable read failed; seeding zero aggregate",
			logger.String("key", key),
			logger.Error(err),
		)
		agg = model.Aggregate{}
	} else if !found {
		agg = model.Aggregate{}
	}

	if err := a.hot.HashSetAll(ctx, key, model.EncodeAggregate(agg)); err != nil {
		return err
	}
	metrics.RecordAggregateLoad()
	a.logger.Debug(ctx, "loaded season aggregate into hot store",
		logger.String("key", key),
		logger.Int64("gamesPlayed", agg.GamesPlayed),
	)
	return nil
}

// ApplyDelta atomically increments each sum field and the games counter by
// the contribution, then flags the aggregate dirty. Fields are independent
// counters; per-field atomicity in the hot store is all the correctness
// the read side needs, so no transaction wraps the increments.
func (a *Accumulator) ApplyDelta(ctx context.Context, season string, sub model.Subject, c model.Contribution) error {
	key := model.SeasonKey(season, sub)

	increments := []struct {
		field string
		delta int64
	}{
		{model.FieldSumPoints, c.Stats.Points},
		{model.FieldSumRebounds, c.Stats.Rebounds},
		{model.FieldSumAssists, c.Stats.Assists},
		{model.FieldSumSteals, c.Stats.Steals},
		{model.FieldSumBlocks, c.Stats.Blocks},
		{model.FieldSumFouls, c.Stats.Fouls},
		{model.FieldSumTurnovers, c.Stats.Turnovers},
		{model.FieldSumMinutes, c.Stats.MinutesTenths},
		{model.FieldGamesPlayed, c.GameCount},
	}
	for _, inc := range increments {
		if err := a.hot.HashIncrBy(ctx, key, inc.field, inc.delta); err != nil {
			return err
		}
	}

	return a.hot.Set(ctx, model.DirtyKey(key), "1")
}

// Read returns the subject's season aggregate, preferring the hot store and
// falling back to the durable store when absent or unreachable. nil means
// neither store knows the subject.
func (a *Accumulator) Read(ctx context.Context, season string, sub model.Subject) (*model.Aggregate, error) {
	key := model.SeasonKey(season, sub)
	fields, err := a.hot.HashGetAll(ctx, key)
	if err != nil {
		a.logger.Warn(ctx, "hot store read failed; falling back to durable",
			logger.String("key", key),
			logger.Error(err),
		)
		fields = nil
	}
	if len(fields) > 0 {
		agg, bad := model.DecodeAggregate(fields)
		if len(bad) > 0 {
			a.logger.Warn(ctx, "malformed aggregate fields read as zero",
				logger.String("key", key),
				logger.String("fields", strings.Join(bad, ",")),
			)
		}
		return &agg, nil
	}

	agg, found, err := a.db.ReadSeasonStats(ctx, sub, season)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	// Warm the hot store so the next read stays on the fast path.
	if err := a.hot.HashSetAll(ctx, key, model.EncodeAggregate(agg)); err != nil {
		a.logger.Warn(ctx, "failed to warm hot store after durable read",
			logger.String("key", key),
			logger.Error(err),
		)
	}
	return &agg, nil
}

// Evict removes the subject's aggregate and its dirty flag from the hot
// store, typically after a successful bulk flush.
func (a *Accumulator) Evict(ctx context.Context, season string, sub model.Subject) error {
	key := model.SeasonKey(season, sub)
	return a.hot.Delete(ctx, key, model.DirtyKey(key))
}
