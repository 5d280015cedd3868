// Package dedupe gates the once-per-game accounting for teams.
package dedupe

import (
	"context"
	"strconv"
	"time"

	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// Marker lifetime mirrors the snapshot window: a game no longer tracked
// cannot be double-counted anyway.
const defaultTTL = 4 * time.Hour

// TeamGameGate ensures a team's games_played counter moves exactly once
// per game, no matter how many of its players report stats.
type TeamGameGate interface {
	// SeenAndRecord atomically checks whether the team/game pair was
	// already counted and records it if not. Returns true if the pair was
	// already seen, false if this call newly recorded it.
	SeenAndRecord(ctx context.Context, teamID, gameID int64) (bool, error)

	// MarkFinished flags the pair's marker as no longer in progress.
	MarkFinished(ctx context.Context, teamID, gameID int64) error

	// HasLiveGame reports whether the team has a marker still in progress.
	HasLiveGame(ctx context.Context, teamID int64) (bool, error)
}

// Gate implements TeamGameGate on the hot store's atomic per-field
// set-if-absent, which closes the check-then-create race two concurrent
// first reports would otherwise hit.
type Gate struct {
	store  hotstore.Store
	ttl    time.Duration
	logger logger.Logger
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithTTL overrides the marker lifetime window.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gate over the given hot store.
func New(store hotstore.Store, opts ...Option) *Gate {
	g := &Gate{
		store:  store,
		ttl:    defaultTTL,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) SeenAndRecord(ctx context.Context, teamID, gameID int64) (bool, error) {
	key := model.TeamGameKey(teamID, gameID)
	// The timestamp rides along as the HSETNX value so the marker is
	// created in a single write; Expire follows immediately, keeping the
	// window where a crash could leave a marker without a lifetime to
	// one call.
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	created, err := g.store.HashSetIfAbsent(ctx, key, "processed", ts)
	if err != nil {
		return false, err
	}
	if !created {
		return true, nil
	}
	if err := g.store.Expire(ctx, key, g.ttl); err != nil {
		return false, err
	}
	g.logger.Debug(ctx, "recorded first report for team game",
		logger.Int64("teamId", teamID),
		logger.Int64("gameId", gameID),
	)
	return false, nil
}

// MarkFinished is idempotent and leaves the marker's lifetime window
// untouched; the marker must outlive completion to absorb stragglers.
func (g *Gate) MarkFinished(ctx context.Context, teamID, gameID int64) error {
	key := model.TeamGameKey(teamID, gameID)
	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		g.logger.Debug(ctx, "no team game marker to finish",
			logger.Int64("teamId", teamID),
			logger.Int64("gameId", gameID),
		)
		return nil
	}
	return g.store.HashSet(ctx, key, model.FieldGameStatus, string(model.StatusFinished))
}

// HasLiveGame applies the same liveness rule used for players: a marker
// counts as live until it is marked finished or expires.
func (g *Gate) HasLiveGame(ctx context.Context, teamID int64) (bool, error) {
	keys, err := g.store.Keys(ctx, model.TeamGamePattern(teamID))
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		fields, err := g.store.HashGetAll(ctx, key)
		if err != nil {
			return false, err
		}
		if model.GameStatus(fields[model.FieldGameStatus]) != model.StatusFinished {
			return true, nil
		}
	}
	return false, nil
}
