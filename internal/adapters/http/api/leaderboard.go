package api

import (
	"context"
	"net/http"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// LeaderboardDependencies is the read side of the overall community ranking.
type LeaderboardDependencies interface {
	OverallRanking(ctx context.Context) ([]model.OverallStanding, error)
}

// LeaderboardHandler handles the overall ranking.
type LeaderboardHandler struct {
	deps   LeaderboardDependencies
	logger logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, l logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, logger: l}
}

// HandleGetLeaderboard handles GET /leaderboard.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard"

	standings, err := h.deps.OverallRanking(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if standings == nil {
		standings = []model.OverallStanding{}
	}
	writeJSON(w, http.StatusOK, listResponse[model.OverallStanding]{Items: standings})
}
