package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// PodiumDependencies reads and replaces a sport's podium.
type PodiumDependencies interface {
	SportPodium(ctx context.Context, sportID string) (model.Podium, error)
	SetSportPodium(ctx context.Context, sportID string, req model.PodiumRequest) (model.Podium, error)
}

// PodiumHandler handles /sports/{sportID}/podium.
type PodiumHandler struct {
	deps   PodiumDependencies
	logger logger.Logger
}

// NewPodiumHandler creates a new podium handler.
func NewPodiumHandler(deps PodiumDependencies, l logger.Logger) *PodiumHandler {
	return &PodiumHandler{deps: deps, logger: l}
}

// HandleGetPodium handles GET /sports/{sportID}/podium.
func (h *PodiumHandler) HandleGetPodium(w http.ResponseWriter, r *http.Request) {
	const op = "api.podium.get"

	sportID, err := pathParam(r, op, "sportID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	podium, err := h.deps.SportPodium(r.Context(), sportID)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, podium)
}

// HandleSetPodium handles PUT /sports/{sportID}/podium. The body names the
// community for each slot; omitted or null slots end up empty.
func (h *PodiumHandler) HandleSetPodium(w http.ResponseWriter, r *http.Request) {
	const op = "api.podium.set"

	sportID, err := pathParam(r, op, "sportID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	var req model.PodiumRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	podium, err := h.deps.SetSportPodium(r.Context(), sportID, req)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, podium)
}

func pathParam(r *http.Request, op, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", NewKind(op, ErrBadRequest)
	}
	return v, nil
}
