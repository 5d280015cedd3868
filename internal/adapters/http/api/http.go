// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/query"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ProcessLiveStat ingests one cumulative stat report.
	ProcessLiveStat(ctx context.Context, snap model.Snapshot) error

	// CompleteGame finishes every tracked player of a game. Returns the
	// number of players transitioned.
	CompleteGame(ctx context.Context, gameID int64) (int, error)

	// Read operations expose averaged season views.
	PlayerSeasonStats(ctx context.Context, playerID int64, season string) (query.PlayerStats, error)
	TeamSeasonStats(ctx context.Context, teamID int64, season string) (query.TeamStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	ingestHandler *IngestHandler
	queryHandler  *QueryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		ingestHandler: NewIngestHandler(deps),
		queryHandler:  NewQueryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/stat/live/game", MetricsMiddleware(s.ingestHandler.HandlePutLiveStat, "ingest"))
	mux.HandleFunc("/stat/live/game/", MetricsMiddleware(s.ingestHandler.HandleCompleteGame, "complete"))
	mux.HandleFunc("/stat/player/", MetricsMiddleware(s.queryHandler.HandleGetPlayerStats, "player"))
	mux.HandleFunc("/stat/team/", MetricsMiddleware(s.queryHandler.HandleGetTeamStats, "team"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
