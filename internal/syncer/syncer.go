// Package syncer keeps the durable store eventually consistent with the
// hot store by periodically flushing dirty season aggregates.
package syncer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/aggregate"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/tracker"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

const defaultInterval = 60 * time.Second

// Syncer runs the recurring dirty-key flush and the explicit bulk/game
// flush paths.
type Syncer struct {
	hot      hotstore.Store
	db       durable.Store
	acc      *aggregate.Accumulator
	tracker  *tracker.Tracker
	season   string
	interval time.Duration
	logger   logger.Logger

	// Non-reentrant guard: two cycles must never flush the same dirty
	// key concurrently.
	running sync.Mutex
}

// Option applies a configuration option to the Syncer.
type Option func(*Syncer)

// WithInterval overrides the sync cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Syncer for one active season.
func New(hot hotstore.Store, db durable.Store, acc *aggregate.Accumulator, tr *tracker.Tracker, season string, opts ...Option) *Syncer {
	s := &Syncer{
		hot:      hot,
		db:       db,
		acc:      acc,
		tracker:  tr,
		season:   season,
		interval: defaultInterval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes SyncDirty on the configured cadence until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncDirty(ctx)
		}
	}
}

// SyncDirty flushes every dirty-flagged aggregate of the active season to
// the durable store, clearing each flag only after its flush succeeds. A
// failed subject keeps its flag and is retried next cycle; failures never
// abort the rest of the batch. If a previous cycle is still running the
// call is skipped entirely.
func (s *Syncer) SyncDirty(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn(ctx, "previous sync cycle still running; skipping")
		metrics.RecordSyncSkipped()
		return
	}
	defer s.running.Unlock()

	start := time.Now()
	var dirty []string
	for _, t := range []model.SubjectType{model.SubjectPlayer, model.SubjectTeam} {
		keys, err := s.hot.Keys(ctx, model.DirtyPattern(s.season, t))
		if err != nil {
			s.logger.Error(ctx, "dirty key scan failed", logger.Error(err))
			return
		}
		dirty = append(dirty, keys...)
	}
	metrics.UpdateDirtyKeys(len(dirty))
	if len(dirty) == 0 {
		return
	}

	s.logger.Info(ctx, "syncing dirty aggregates", logger.Int("keys", len(dirty)))
	for _, dirtyKey := range dirty {
		seasonKey := model.SeasonKeyFromDirty(dirtyKey)
		sub, err := model.ParseSeasonKey(seasonKey)
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed dirty key",
				logger.String("key", dirtyKey),
				logger.Error(err),
			)
			continue
		}
		// Clear the flag before reading the aggregate. A delta that lands
		// mid-flush re-dirties the key itself, so it is picked up next
		// cycle instead of being silently absorbed by this one.
		if err := s.hot.Delete(ctx, dirtyKey); err != nil {
			s.logger.Warn(ctx, "failed to clear dirty flag",
				logger.String("key", dirtyKey),
				logger.Error(err),
			)
		}
		if err := s.flush(ctx, sub, false); err != nil {
			s.logger.Error(ctx, "flush failed; restoring dirty flag",
				logger.String("key", seasonKey),
				logger.Error(err),
			)
			if serr := s.hot.Set(ctx, dirtyKey, "1"); serr != nil {
				s.logger.Error(ctx, "failed to restore dirty flag",
					logger.String("key", dirtyKey),
					logger.Error(serr),
				)
			}
			metrics.RecordFlushFailure()
			continue
		}
		metrics.RecordFlush()
	}
	metrics.RecordSyncRun(time.Since(start))
}

// flush upserts one subject's hot aggregate into the durable store. When
// evict is set the aggregate and its dirty flag are removed from the hot
// store after a successful write.
func (s *Syncer) flush(ctx context.Context, sub model.Subject, evict bool) error {
	key := model.SeasonKey(s.season, sub)
	fields, err := s.hot.HashGetAll(ctx, key)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		s.logger.Debug(ctx, "no hot aggregate to flush", logger.String("key", key))
		return nil
	}
	agg, bad := model.DecodeAggregate(fields)
	if len(bad) > 0 {
		s.logger.Warn(ctx, "malformed aggregate fields flushed as zero",
			logger.String("key", key),
			logger.String("fields", strings.Join(bad, ",")),
		)
	}
	if err := s.db.UpsertSeasonStats(ctx, sub, s.season, agg); err != nil {
		return err
	}
	if evict {
		return s.acc.Evict(ctx, s.season, sub)
	}
	return nil
}

// FlushSubject flushes one subject and evicts it from the hot store, used
// for explicit per-subject flush requests.
func (s *Syncer) FlushSubject(ctx context.Context, sub model.Subject) error {
	return s.flush(ctx, sub, true)
}

// FlushSeason flushes every aggregate of a season and evicts each from the
// hot store, for season-end handover to the durable store. Per-subject
// failures are isolated.
func (s *Syncer) FlushSeason(ctx context.Context, season string) {
	for _, t := range []model.SubjectType{model.SubjectPlayer, model.SubjectTeam} {
		keys, err := s.hot.Keys(ctx, model.SeasonPattern(season, t))
		if err != nil {
			s.logger.Error(ctx, "season key scan failed", logger.Error(err))
			continue
		}
		for _, key := range keys {
			sub, err := model.ParseSeasonKey(key)
			if err != nil {
				s.logger.Warn(ctx, "skipping malformed season key",
					logger.String("key", key),
					logger.Error(err),
				)
				continue
			}
			if err := s.FlushSubject(ctx, sub); err != nil {
				s.logger.Error(ctx, "season flush failed for subject",
					logger.String("key", key),
					logger.Error(err),
				)
				metrics.RecordFlushFailure()
				continue
			}
			metrics.RecordFlush()
		}
	}
}

// FlushGame flushes the season aggregates of every player and team that
// took part in a game, evicting them from the hot store. Used after game
// completion so finished totals reach the durable store promptly.
func (s *Syncer) FlushGame(ctx context.Context, gameID int64) {
	players, err := s.tracker.PlayersInGame(ctx, gameID)
	if err != nil {
		s.logger.Error(ctx, "failed to list players for game flush",
			logger.Int64("gameId", gameID),
			logger.Error(err),
		)
		return
	}

	teams := make(map[int64]struct{})
	for _, playerID := range players {
		snap, err := s.tracker.Get(ctx, gameID, playerID)
		if err == nil && snap != nil {
			teams[snap.TeamID] = struct{}{}
		}
		if err := s.FlushSubject(ctx, model.Player(playerID)); err != nil {
			s.logger.Error(ctx, "game flush failed for player",
				logger.Int64("gameId", gameID),
				logger.Int64("playerId", playerID),
				logger.Error(err),
			)
			metrics.RecordFlushFailure()
		}
	}
	for teamID := range teams {
		if err := s.FlushSubject(ctx, model.Team(teamID)); err != nil {
			s.logger.Error(ctx, "game flush failed for team",
				logger.Int64("gameId", gameID),
				logger.Int64("teamId", teamID),
				logger.Error(err),
			)
			metrics.RecordFlushFailure()
		}
	}
}
