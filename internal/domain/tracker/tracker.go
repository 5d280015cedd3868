// Package tracker stores the last-seen cumulative snapshot per
// (game, player) pair in the hot store, with a bounded lifetime.
package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// Default bounded lifetime for snapshot keys. A game that is never
// explicitly completed still ages out of the hot store.
const defaultTTL = 4 * time.Hour

// Tracker owns the g:<game>:p:<player> keys.
type Tracker struct {
	store  hotstore.Store
	ttl    time.Duration
	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithTTL overrides the snapshot lifetime window.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tracker over the given hot store.
func New(store hotstore.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		ttl:    defaultTTL,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns the stored snapshot for a game/player pair, or nil when none
// exists. Absence is the sole signal that this is the pair's first report.
func (t *Tracker) Get(ctx context.Context, gameID, playerID int64) (*model.Snapshot, error) {
	key := model.GameKey(gameID, playerID)
	fields, err := t.store.HashGetAll(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	snap, bad := model.DecodeSnapshot(fields)
	if len(bad) > 0 {
		t.logger.Warn(ctx, "malformed snapshot fields read as zero",
			logger.String("key", key),
			logger.String("fields", strings.Join(bad, ",")),
		)
	}
	return &snap, nil
}

// Put overwrites the pair's snapshot and resets its lifetime window.
func (t *Tracker) Put(ctx context.Context, snap model.Snapshot) error {
	key := model.GameKey(snap.GameID, snap.PlayerID)
	if err := t.store.HashSetAll(ctx, key, model.EncodeSnapshot(snap)); err != nil {
		return err
	}
	return t.store.Expire(ctx, key, t.ttl)
}

// MarkFinished transitions the pair's snapshot to FINISHED. It is
// idempotent and does not extend the lifetime window. A missing snapshot
// is logged and ignored: the player may have expired before completion.
func (t *Tracker) MarkFinished(ctx context.Context, gameID, playerID int64) error {
	key := model.GameKey(gameID, playerID)
	exists, err := t.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		t.logger.Debug(ctx, "no snapshot to finish",
			logger.Int64("gameId", gameID),
			logger.Int64("playerId", playerID),
		)
		return nil
	}
	return t.store.HashSet(ctx, key, model.FieldGameStatus, string(model.StatusFinished))
}

// Remove deletes the pair's snapshot.
func (t *Tracker) Remove(ctx context.Context, gameID, playerID int64) error {
	return t.store.Delete(ctx, model.GameKey(gameID, playerID))
}

// PlayersInGame returns the ids of all players with a snapshot in a game.
func (t *Tracker) PlayersInGame(ctx context.Context, gameID int64) ([]int64, error) {
	keys, err := t.store.Keys(ctx, model.GamePattern(gameID))
	if err != nil {
		return nil, err
	}
	players := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := model.PlayerIDFromGameKey(key)
		if err != nil {
			t.logger.Warn(ctx, "skipping malformed snapshot key", logger.String("key", key))
			continue
		}
		players = append(players, id)
	}
	return players, nil
}

// HasLiveGame reports whether the player has any snapshot still marked
// LIVE. FINISHED snapshots are retained until expiry, so bare key
// existence is not enough.
func (t *Tracker) HasLiveGame(ctx context.Context, playerID int64) (bool, error) {
	keys, err := t.store.Keys(ctx, model.PlayerGamePattern(playerID))
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		status, err := t.store.HashGetAll(ctx, key)
		if err != nil {
			return false, err
		}
		if model.GameStatus(status[model.FieldGameStatus]) != model.StatusFinished {
			return true, nil
		}
	}
	return false, nil
}

// SnapshotCount returns the number of snapshot keys currently alive.
func (t *Tracker) SnapshotCount(ctx context.Context) (int, error) {
	keys, err := t.store.Keys(ctx, "g:*:p:*")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
