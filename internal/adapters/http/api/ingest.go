package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
)

// liveStatRequest is one cumulative box-score report for a player in a
// live game. Every stat field is a running total, not an increment.
type liveStatRequest struct {
	GameID        int64   `json:"gameId"`
	TeamID        int64   `json:"teamId"`
	PlayerID      int64   `json:"playerId"`
	Points        int64   `json:"points"`
	Rebounds      int64   `json:"rebounds"`
	Assists       int64   `json:"assists"`
	Steals        int64   `json:"steals"`
	Blocks        int64   `json:"blocks"`
	Fouls         int64   `json:"fouls"`
	Turnovers     int64   `json:"turnovers"`
	MinutesPlayed float64 `json:"minutesPlayed"`
}

type completeResponse struct {
	GameID          int64 `json:"gameId"`
	PlayersFinished int   `json:"playersFinished"`
}

const (
	maxFouls   = 6
	maxMinutes = 48.0
)

func (r liveStatRequest) validate() error {
	if r.GameID <= 0 || r.TeamID <= 0 || r.PlayerID <= 0 {
		return fmt.Errorf("%w: gameId, teamId and playerId must be positive", ErrBadRequest)
	}
	for name, v := range map[string]int64{
		"points":    r.Points,
		"rebounds":  r.Rebounds,
		"assists":   r.Assists,
		"steals":    r.Steals,
		"blocks":    r.Blocks,
		"fouls":     r.Fouls,
		"turnovers": r.Turnovers,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrBadRequest, name)
		}
	}
	if r.Fouls > maxFouls {
		return fmt.Errorf("%w: fouls must not exceed %d", ErrBadRequest, maxFouls)
	}
	if r.MinutesPlayed < 0 || r.MinutesPlayed > maxMinutes {
		return fmt.Errorf("%w: minutesPlayed must be between 0 and %.0f", ErrBadRequest, maxMinutes)
	}
	return nil
}

func (r liveStatRequest) snapshot() model.Snapshot {
	return model.Snapshot{
		GameID:   r.GameID,
		TeamID:   r.TeamID,
		PlayerID: r.PlayerID,
		Status:   model.StatusLive,
		Stats: model.StatLine{
			Points:        r.Points,
			Rebounds:      r.Rebounds,
			Assists:       r.Assists,
			Steals:        r.Steals,
			Blocks:        r.Blocks,
			Fouls:         r.Fouls,
			Turnovers:     r.Turnovers,
			MinutesTenths: int64(r.MinutesPlayed*10 + 0.5),
		},
	}
}

// IngestHandler accepts live stat reports and game completion signals.
type IngestHandler struct {
	deps Dependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps Dependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandlePutLiveStat handles PUT /stat/live/game.
func (h *IngestHandler) HandlePutLiveStat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req liveStatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_stat", err)
		return
	}

	if err := h.deps.ProcessLiveStat(r.Context(), req.snapshot()); err != nil {
		logger.Get().Error(r.Context(), "live stat rejected",
			logger.Int64("game_id", req.GameID),
			logger.Int64("player_id", req.PlayerID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "ingest_failed", nil)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleCompleteGame handles PUT /stat/live/game/{id}/complete.
func (h *IngestHandler) HandleCompleteGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/stat/live/game/")
	idPart, ok := strings.CutSuffix(rest, "/complete")
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	gameID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || gameID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_game_id", fmt.Errorf("%w: game id must be a positive integer", ErrBadRequest))
		return
	}

	finished, err := h.deps.CompleteGame(r.Context(), gameID)
	if err != nil {
		logger.Get().Error(r.Context(), "game completion failed",
			logger.Int64("game_id", gameID),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "completion_failed", nil)
		return
	}

	writeJSON(w, http.StatusOK, completeResponse{GameID: gameID, PlayersFinished: finished})
}
