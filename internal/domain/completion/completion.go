// Package completion tracks which players are active in a game and
// transitions their snapshots to FINISHED when the game ends.
package completion

import (
	"context"
	"strconv"
	"time"

	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/tracker"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Subscription sets share the snapshot lifetime window.
const defaultTTL = 4 * time.Hour

// Subscriber is the ingest-facing slice of the state machine. Keeping it
// behind an interface lets the subscribe call move to asynchronous
// dispatch without touching ingest logic.
type Subscriber interface {
	Subscribe(ctx context.Context, playerID, gameID int64) error
}

// Completer runs the per-game player registry and the completion fan-out.
type Completer struct {
	store   hotstore.Store
	tracker *tracker.Tracker
	gate    dedupe.TeamGameGate
	ttl     time.Duration
	logger  logger.Logger
}

// Option applies a configuration option to the Completer.
type Option func(*Completer)

// WithTTL overrides the subscription set lifetime window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Completer) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Completer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Completer over the given collaborators.
func New(store hotstore.Store, tr *tracker.Tracker, gate dedupe.TeamGameGate, opts ...Option) *Completer {
	c := &Completer{
		store:   store,
		tracker: tr,
		gate:    gate,
		ttl:     defaultTTL,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a player as active in a game. Called on the first
// stat report of every (game, player) pair.
func (c *Completer) Subscribe(ctx context.Context, playerID, gameID int64) error {
	key := model.SubscriptionKey(gameID)
	if err := c.store.SetAdd(ctx, key, strconv.FormatInt(playerID, 10)); err != nil {
		return err
	}
	return c.store.Expire(ctx, key, c.ttl)
}

// Complete transitions every tracked player's snapshot to FINISHED, marks
// the involved team markers finished and deletes the game's subscription
// set. An empty or absent set is a logged no-op. The fan-out is not atomic
// across players: one player's failure is logged and the rest proceed, and
// a retried completion is idempotent. Returns the number of players whose
// snapshots were finished.
func (c *Completer) Complete(ctx context.Context, gameID int64) (int, error) {
	key := model.SubscriptionKey(gameID)
	members, err := c.store.SetMembers(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		c.logger.Info(ctx, "game completed with no tracked players",
			logger.Int64("gameId", gameID),
		)
		return 0, nil
	}

	c.logger.Info(ctx, "completing game",
		logger.Int64("gameId", gameID),
		logger.Int("players", len(members)),
	)

	finished := 0
	teams := make(map[int64]struct{})
	for _, member := range members {
		playerID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			c.logger.Warn(ctx, "skipping malformed player id in subscription set",
				logger.Int64("gameId", gameID),
				logger.String("member", member),
			)
			continue
		}
		snap, err := c.tracker.Get(ctx, gameID, playerID)
		if err == nil && snap != nil {
			teams[snap.TeamID] = struct{}{}
		}
		if err := c.tracker.MarkFinished(ctx, gameID, playerID); err != nil {
			c.logger.Error(ctx, "failed to finish player snapshot",
				logger.Int64("gameId", gameID),
				logger.Int64("playerId", playerID),
				logger.Error(err),
			)
			continue
		}
		finished++
	}

	for teamID := range teams {
		if err := c.gate.MarkFinished(ctx, teamID, gameID); err != nil {
			c.logger.Error(ctx, "failed to finish team game marker",
				logger.Int64("gameId", gameID),
				logger.Int64("teamId", teamID),
				logger.Error(err),
			)
		}
	}

	if err := c.store.Delete(ctx, key); err != nil {
		return finished, err
	}

	metrics.RecordGameCompleted()
	metrics.RecordPlayersFinished(finished)
	return finished, nil
}
