// Package roster serves player and team display names from an immutable
// in-process snapshot, refreshed on a schedule.
package roster

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Placeholders for ids the directory does not know.
const (
	UnknownPlayer = "Unknown Player"
	UnknownTeam   = "Unknown Team"
)

const defaultRefreshInterval = 24 * time.Hour

// Directory holds the current name mappings. Each refresh replaces the
// whole map behind an atomic pointer swap, so readers never block.
type Directory struct {
	db              durable.Store
	players         atomic.Pointer[map[int64]string]
	teams           atomic.Pointer[map[int64]string]
	refreshInterval time.Duration
	logger          logger.Logger
}

// Option applies a configuration option to the Directory.
type Option func(*Directory)

// WithRefreshInterval overrides the refresh cadence.
func WithRefreshInterval(d time.Duration) Option {
	return func(dir *Directory) {
		if d > 0 {
			dir.refreshInterval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(dir *Directory) {
		if l != nil {
			dir.logger = l
		}
	}
}

// New creates an empty Directory backed by the durable store.
func New(db durable.Store, opts ...Option) *Directory {
	d := &Directory{
		db:              db,
		refreshInterval: defaultRefreshInterval,
		logger:          logger.Nop(),
	}
	empty := map[int64]string{}
	d.players.Store(&empty)
	d.teams.Store(&empty)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PlayerName returns the display name for a player id.
func (d *Directory) PlayerName(id int64) string {
	if name, ok := (*d.players.Load())[id]; ok {
		return name
	}
	return UnknownPlayer
}

// TeamName returns the display name for a team id.
func (d *Directory) TeamName(id int64) string {
	if name, ok := (*d.teams.Load())[id]; ok {
		return name
	}
	return UnknownTeam
}

// Refresh reloads both mappings from the durable store. A failed load
// keeps the previous snapshot in place.
func (d *Directory) Refresh(ctx context.Context) error {
	players, err := d.db.PlayerNames(ctx)
	if err != nil {
		d.logger.Warn(ctx, "player name refresh failed; keeping previous snapshot", logger.Error(err))
		return err
	}
	teams, err := d.db.TeamNames(ctx)
	if err != nil {
		d.logger.Warn(ctx, "team name refresh failed; keeping previous snapshot", logger.Error(err))
		return err
	}
	d.players.Store(&players)
	d.teams.Store(&teams)
	metrics.UpdateRosterSizes(len(players), len(teams))
	d.logger.Info(ctx, "roster refreshed",
		logger.Int("players", len(players)),
		logger.Int("teams", len(teams)),
	)
	return nil
}

// Run refreshes on the configured cadence until ctx is cancelled.
func (d *Directory) Run(ctx context.Context) {
	ticker := time.NewTicker(d.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.Refresh(ctx)
		}
	}
}
