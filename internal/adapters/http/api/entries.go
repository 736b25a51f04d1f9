package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

// EntryDependencies is the raw score entry surface.
type EntryDependencies interface {
	CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error)
	GetEntry(ctx context.Context, id string) (model.Entry, error)
	UpdateEntry(ctx context.Context, id string, patch model.EntryPatch) (model.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListSportEntries(ctx context.Context, sportID string) ([]model.Entry, error)
	ListCommunityEntries(ctx context.Context, communityID string) ([]model.Entry, error)
}

// EntryHandler handles score entry CRUD.
type EntryHandler struct {
	deps   EntryDependencies
	logger logger.Logger
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(deps EntryDependencies, l logger.Logger) *EntryHandler {
	return &EntryHandler{deps: deps, logger: l}
}

// CreateEntryRequest is the body of POST /entries.
type CreateEntryRequest struct {
	CommunityID string `json:"community_id"`
	SportID     string `json:"sport_id"`
	Score       int    `json:"score"`
	Position    *int   `json:"position,omitempty"`
	Medal       string `json:"medal,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Entry converts the request into a domain entry.
func (r CreateEntryRequest) Entry() (model.Entry, error) {
	medal, err := model.ParseMedal(r.Medal)
	if err != nil {
		return model.Entry{}, err
	}
	return model.Entry{
		CommunityID: r.CommunityID,
		SportID:     r.SportID,
		Score:       r.Score,
		Position:    r.Position,
		Medal:       medal,
		Notes:       r.Notes,
	}, nil
}

// UpdateEntryRequest is the body of PATCH /entries/{entryID}. Absent fields
// are left alone; clear_position drops the placement.
type UpdateEntryRequest struct {
	Score         *int    `json:"score,omitempty"`
	Position      *int    `json:"position,omitempty"`
	ClearPosition bool    `json:"clear_position,omitempty"`
	Medal         *string `json:"medal,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateEntryRequest) Patch() (model.EntryPatch, error) {
	p := model.EntryPatch{
		Score:         r.Score,
		Position:      r.Position,
		ClearPosition: r.ClearPosition,
		Notes:         r.Notes,
	}
	if r.ClearPosition && r.Position != nil {
		return model.EntryPatch{}, fmt.Errorf("%w: position and clear_position are exclusive", ErrBadRequest)
	}
	if r.Medal != nil {
		m, err := model.ParseMedal(*r.Medal)
		if err != nil {
			return model.EntryPatch{}, err
		}
		if m != "" {
			p.Medal = &m
		}
	}
	return p, nil
}

// HandleCreateEntry handles POST /entries.
func (h *EntryHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.create"

	var req CreateEntryRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	e, err := req.Entry()
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	created, err := h.deps.CreateEntry(r.Context(), e)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/entries/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// HandleGetEntry handles GET /entries/{entryID}.
func (h *EntryHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.get"

	id, err := pathParam(r, op, "entryID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	e, err := h.deps.GetEntry(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleUpdateEntry handles PATCH /entries/{entryID}.
func (h *EntryHandler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.update"

	id, err := pathParam(r, op, "entryID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	var req UpdateEntryRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	e, err := h.deps.UpdateEntry(r.Context(), id, patch)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleDeleteEntry handles DELETE /entries/{entryID}.
func (h *EntryHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.delete"

	id, err := pathParam(r, op, "entryID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.deps.DeleteEntry(r.Context(), id); err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListSportEntries handles GET /sports/{sportID}/entries.
func (h *EntryHandler) HandleListSportEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.by_sport"

	sportID, err := pathParam(r, op, "sportID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	entries, err := h.deps.ListSportEntries(r.Context(), sportID)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse(entries))
}

// HandleListCommunityEntries handles GET /communities/{communityID}/entries.
func (h *EntryHandler) HandleListCommunityEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.entries.by_community"

	communityID, err := pathParam(r, op, "communityID")
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	entries, err := h.deps.ListCommunityEntries(r.Context(), communityID)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse(entries))
}
