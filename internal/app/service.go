// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/okian/courtside/internal/adapters/durable"
	"github.com/okian/courtside/internal/adapters/hotstore"
	"github.com/okian/courtside/internal/domain/aggregate"
	"github.com/okian/courtside/internal/domain/completion"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/delta"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/roster"
	"github.com/okian/courtside/internal/domain/tracker"
	"github.com/okian/courtside/internal/syncer"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Service implements the live stats aggregation engine behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Stores
	hot hotstore.Store
	db  durable.Store

	// Core components
	tracker    *tracker.Tracker
	acc        *aggregate.Accumulator
	gate       dedupe.TeamGameGate
	completer  *completion.Completer
	subscriber completion.Subscriber
	names      *roster.Directory
	syncer     *syncer.Syncer
	queries    *query.Service

	// Configuration
	season            string
	syncEnabled       bool
	syncInterval      time.Duration
	snapshotTTL       time.Duration
	rosterRefresh     time.Duration
	flushOnCompletion bool

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHotStore sets the hot store implementation.
func WithHotStore(store hotstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.hot = store
		}
	}
}

// WithDurableStore sets the durable store implementation.
func WithDurableStore(store durable.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.db = store
		}
	}
}

// WithSeason sets the active season label.
func WithSeason(season string) Option {
	return func(s *Service) {
		if season != "" {
			s.season = season
		}
	}
}

// WithSyncEnabled toggles the recurring dirty-key sync.
func WithSyncEnabled(enabled bool) Option {
	return func(s *Service) {
		s.syncEnabled = enabled
	}
}

// WithSyncInterval sets the dirty-key sync cadence.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncInterval = d
		}
	}
}

// WithSnapshotTTL bounds the lifetime of snapshots, markers and
// subscription sets.
func WithSnapshotTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.snapshotTTL = d
		}
	}
}

// WithRosterRefreshInterval sets the name directory refresh cadence.
func WithRosterRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rosterRefresh = d
		}
	}
}

// WithFlushOnCompletion toggles the immediate durable flush of a game's
// subjects after completion.
func WithFlushOnCompletion(enabled bool) Option {
	return func(s *Service) {
		s.flushOnCompletion = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		season:            "2024/25",
		syncEnabled:       true,
		syncInterval:      60 * time.Second,
		snapshotTTL:       4 * time.Hour,
		rosterRefresh:     24 * time.Hour,
		flushOnCompletion: true,
		logger:            nil, // Will be replaced when service starts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.hot == nil {
		s.hot = hotstore.NewMemory()
		s.logger.Info(ctx, "using in-memory hot store")
	}
	if s.db == nil {
		s.db = durable.NewMemory()
		s.logger.Info(ctx, "using in-memory durable store")
	}

	s.tracker = tracker.New(s.hot,
		tracker.WithTTL(s.snapshotTTL),
		tracker.WithLogger(s.logger.Named("tracker")),
	)
	s.acc = aggregate.New(s.hot, s.db,
		aggregate.WithLogger(s.logger.Named("aggregate")),
	)
	s.gate = dedupe.New(s.hot,
		dedupe.WithTTL(s.snapshotTTL),
		dedupe.WithLogger(s.logger.Named("dedupe")),
	)
	s.completer = completion.New(s.hot, s.tracker, s.gate,
		completion.WithTTL(s.snapshotTTL),
		completion.WithLogger(s.logger.Named("completion")),
	)
	s.subscriber = s.completer
	s.names = roster.New(s.db,
		roster.WithRefreshInterval(s.rosterRefresh),
		roster.WithLogger(s.logger.Named("roster")),
	)
	s.syncer = syncer.New(s.hot, s.db, s.acc, s.tracker, s.season,
		syncer.WithInterval(s.syncInterval),
		syncer.WithLogger(s.logger.Named("syncer")),
	)
	s.queries = query.New(s.acc, s.tracker, s.gate, s.names,
		query.WithLogger(s.logger.Named("query")),
	)

	// Initial roster load is best-effort: queries fall back to
	// placeholder names until a refresh succeeds.
	if err := s.names.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial roster load failed", logger.Error(err))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.names.Run(runCtx)
	if s.syncEnabled {
		go s.syncer.Run(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "stats service started",
		logger.String("season", s.season),
		logger.Bool("syncEnabled", s.syncEnabled),
		logger.Duration("syncInterval", s.syncInterval),
		logger.Duration("snapshotTTL", s.snapshotTTL),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping stats service...")
	if s.cancel != nil {
		s.cancel()
	}
	// Hand remaining dirty state to the durable store before letting go
	// of the hot store.
	s.syncer.SyncDirty(ctx)

	if closer, ok := s.hot.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if closer, ok := s.db.(interface{ Close() }); ok {
		closer.Close()
	}
	s.started = false
	s.logger.Info(ctx, "stats service stopped")
}

// ProcessLiveStat ingests one cumulative stat report. The snapshot's stats
// are the player's full running totals for the game, not an increment.
// Hot-store write failures surface to the caller so the ingest boundary
// can retry; a dropped live update would corrupt the season aggregate.
func (s *Service) ProcessLiveStat(ctx context.Context, snap model.Snapshot) error {
	if err := s.processLiveStat(ctx, snap); err != nil {
		metrics.RecordStatFailed()
		return err
	}
	metrics.RecordStatProcessed()
	return nil
}

func (s *Service) processLiveStat(ctx context.Context, snap model.Snapshot) error {
	player := model.Player(snap.PlayerID)

	if err := s.acc.EnsureLoaded(ctx, s.season, player); err != nil {
		return err
	}

	prev, err := s.tracker.Get(ctx, snap.GameID, snap.PlayerID)
	if err != nil {
		return err
	}
	if prev == nil {
		metrics.RecordFirstReport()
		// Subscription bookkeeping must not block ingest; a lost
		// subscription only weakens completion fan-out for this player.
		if err := s.subscriber.Subscribe(ctx, snap.PlayerID, snap.GameID); err != nil {
			s.logger.Warn(ctx, "failed to subscribe player to game",
				logger.Int64("gameId", snap.GameID),
				logger.Int64("playerId", snap.PlayerID),
				logger.Error(err),
			)
		}
	}

	// A report never moves the lifecycle state: the first report opens
	// the game as LIVE, and a straggler for a completed game must not
	// resurrect a FINISHED snapshot. FINISHED is terminal.
	snap.Status = model.StatusLive
	if prev != nil {
		snap.Status = prev.Status
	}

	contribution := delta.Compute(prev, snap)
	if err := s.acc.ApplyDelta(ctx, s.season, player, contribution); err != nil {
		return err
	}
	if err := s.tracker.Put(ctx, snap); err != nil {
		return err
	}

	return s.applyTeamDelta(ctx, snap, contribution)
}

// applyTeamDelta folds the player's contribution into the team aggregate,
// counting the game only when this is the first report the team's dedup
// gate has seen for it.
func (s *Service) applyTeamDelta(ctx context.Context, snap model.Snapshot, c model.Contribution) error {
	team := model.Team(snap.TeamID)
	if err := s.acc.EnsureLoaded(ctx, s.season, team); err != nil {
		return err
	}

	seen, err := s.gate.SeenAndRecord(ctx, snap.TeamID, snap.GameID)
	if err != nil {
		return err
	}
	teamContribution := model.Contribution{Stats: c.Stats}
	if !seen {
		teamContribution.GameCount = 1
		metrics.RecordTeamGame()
	}
	return s.acc.ApplyDelta(ctx, s.season, team, teamContribution)
}

// CompleteGame runs the completion fan-out for a game and, when enabled,
// flushes the involved subjects to the durable store. Returns how many
// player snapshots were finished.
func (s *Service) CompleteGame(ctx context.Context, gameID int64) (int, error) {
	finished, err := s.completer.Complete(ctx, gameID)
	if err != nil {
		return finished, err
	}
	if s.flushOnCompletion {
		// Snapshots survive the fan-out (only their status changes), so
		// they still identify the game's subjects here.
		s.syncer.FlushGame(ctx, gameID)
	}
	return finished, nil
}

// PlayerSeasonStats answers a player stat query. An empty season selects
// the active one.
func (s *Service) PlayerSeasonStats(ctx context.Context, playerID int64, season string) (query.PlayerStats, error) {
	if season == "" {
		season = s.season
	}
	return s.queries.PlayerSeasonStats(ctx, playerID, season)
}

// TeamSeasonStats answers a team stat query. An empty season selects the
// active one.
func (s *Service) TeamSeasonStats(ctx context.Context, teamID int64, season string) (query.TeamStats, error) {
	if season == "" {
		season = s.season
	}
	return s.queries.TeamSeasonStats(ctx, teamID, season)
}

// FlushSeason pushes every hot aggregate of a season to the durable store
// and evicts them, for season-end handover.
func (s *Service) FlushSeason(ctx context.Context, season string) {
	if season == "" {
		season = s.season
	}
	s.syncer.FlushSeason(ctx, season)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"season":       s.season,
		"syncEnabled":  s.syncEnabled,
		"syncInterval": s.syncInterval.String(),
	}
	if s.started {
		ctx := context.Background()
		if n, err := s.tracker.SnapshotCount(ctx); err == nil {
			stats["liveSnapshots"] = n
			metrics.UpdateLiveSnapshots(n)
		}
	}
	return stats
}
