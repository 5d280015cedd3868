package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/courtside/pkg/logger"
)

// QueryHandler serves averaged season views for players and teams.
type QueryHandler struct {
	deps Dependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps Dependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// HandleGetPlayerStats handles GET /stat/player/{id}?season=YYYY/YY.
func (h *QueryHandler) HandleGetPlayerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	id, err := subjectID(r.URL.Path, "/stat/player/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_player_id", err)
		return
	}

	stats, err := h.deps.PlayerSeasonStats(r.Context(), id, r.URL.Query().Get("season"))
	if err != nil {
		logger.Get().Error(r.Context(), "player stats lookup failed",
			logger.Int64("player_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleGetTeamStats handles GET /stat/team/{id}?season=YYYY/YY.
func (h *QueryHandler) HandleGetTeamStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	id, err := subjectID(r.URL.Path, "/stat/team/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_team_id", err)
		return
	}

	stats, err := h.deps.TeamSeasonStats(r.Context(), id, r.URL.Query().Get("season"))
	if err != nil {
		logger.Get().Error(r.Context(), "team stats lookup failed",
			logger.Int64("team_id", id),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "query_failed", nil)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func subjectID(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", ErrBadRequest)
	}
	return id, nil
}
