// Package query computes per-game averaged views over season aggregates.
package query

import (
	"context"

	"github.com/okian/courtside/internal/domain/aggregate"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/roster"
	"github.com/okian/courtside/internal/domain/tracker"
	"github.com/okian/courtside/pkg/logger"
)

// Averages is the per-category averaged stat view.
type Averages struct {
	Points    float64 `json:"avgPoints"`
	Rebounds  float64 `json:"avgRebounds"`
	Assists   float64 `json:"avgAssists"`
	Steals    float64 `json:"avgSteals"`
	Blocks    float64 `json:"avgBlocks"`
	Fouls     float64 `json:"avgFouls"`
	Turnovers float64 `json:"avgTurnovers"`
	Minutes   float64 `json:"avgMinutes"`
}

// PlayerStats is the query response for a player season.
type PlayerStats struct {
	PlayerID    int64  `json:"playerId"`
	PlayerName  string `json:"playerName"`
	GamesPlayed int64  `json:"gamesPlayed"`
	HasLiveGame bool   `json:"hasLiveGame"`
	Averages
}

// TeamStats is the query response for a team season.
type TeamStats struct {
	TeamID      int64  `json:"teamId"`
	TeamName    string `json:"teamName"`
	GamesPlayed int64  `json:"gamesPlayed"`
	HasLiveGame bool   `json:"hasLiveGame"`
	Averages
}

// Service reads aggregates and liveness signals to answer stat queries.
type Service struct {
	acc     *aggregate.Accumulator
	tracker *tracker.Tracker
	gate    dedupe.TeamGameGate
	names   *roster.Directory
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a query Service over the given collaborators.
func New(acc *aggregate.Accumulator, tr *tracker.Tracker, gate dedupe.TeamGameGate, names *roster.Directory, opts ...Option) *Service {
	s := &Service{
		acc:     acc,
		tracker: tr,
		gate:    gate,
		names:   names,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlayerSeasonStats returns the player's averaged season view. An unknown
// player yields a zeroed view carrying the display name.
func (s *Service) PlayerSeasonStats(ctx context.Context, playerID int64, season string) (PlayerStats, error) {
	out := PlayerStats{
		PlayerID:   playerID,
		PlayerName: s.names.PlayerName(playerID),
	}

	agg, err := s.acc.Read(ctx, season, model.Player(playerID))
	if err != nil {
		return out, err
	}
	if agg == nil {
		return out, nil
	}

	live, err := s.tracker.HasLiveGame(ctx, playerID)
	if err != nil {
		s.logger.Warn(ctx, "liveness check failed; treating player as not live",
			logger.Int64("playerId", playerID),
			logger.Error(err),
		)
		live = false
	}

	out.GamesPlayed = agg.GamesPlayed
	out.HasLiveGame = live
	out.Averages = average(*agg, live)
	return out, nil
}

// TeamSeasonStats returns the team's averaged season view using the same
// liveness-based divisor rule as players.
func (s *Service) TeamSeasonStats(ctx context.Context, teamID int64, season string) (TeamStats, error) {
	out := TeamStats{
		TeamID:   teamID,
		TeamName: s.names.TeamName(teamID),
	}

	agg, err := s.acc.Read(ctx, season, model.Team(teamID))
	if err != nil {
		return out, err
	}
	if agg == nil {
		return out, nil
	}

	live, err := s.gate.HasLiveGame(ctx, teamID)
	if err != nil {
		s.logger.Warn(ctx, "liveness check failed; treating team as not live",
			logger.Int64("teamId", teamID),
			logger.Error(err),
		)
		live = false
	}

	out.GamesPlayed = agg.GamesPlayed
	out.HasLiveGame = live
	out.Averages = average(*agg, live)
	return out, nil
}

// average divides season sums by the number of completed games. A game
// still in progress is excluded from the divisor so it does not drag the
// historical average; the divisor is clamped to 1 so division by zero
// never propagates.
func average(agg model.Aggregate, hasLiveGame bool) Averages {
	completed := agg.GamesPlayed
	if hasLiveGame {
		completed--
	}
	if completed < 1 {
		completed = 1
	}
	div := float64(completed)
	return Averages{
		Points:    float64(agg.Sums.Points) / div,
		Rebounds:  float64(agg.Sums.Rebounds) / div,
		Assists:   float64(agg.Sums.Assists) / div,
		Steals:    float64(agg.Sums.Steals) / div,
		Blocks:    float64(agg.Sums.Blocks) / div,
		Fouls:     float64(agg.Sums.Fouls) / div,
		Turnovers: float64(agg.Sums.Turnovers) / div,
		Minutes:   agg.Sums.Minutes() / div,
	}
}
