// Package model contains the leaderboard domain types shared between layers.
package model

import (
	"strings"
	"time"
)

// Entry is one community's result in one sport. (CommunityID, SportID) is unique.
type Entry struct {
	ID          string    `json:"id"`
	CommunityID string    `json:"community_id"`
	SportID     string    `json:"sport_id"`
	Score       int       `json:"score"`
	Position    *int      `json:"position,omitempty"`
	Medal       Medal     `json:"medal"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Placed reports whether the entry holds a position in its sport.
func (e Entry) Placed() bool {
	return e.Position != nil
}

// PositionValue returns the position or 0 when absent.
func (e Entry) PositionValue() int {
	if e.Position == nil {
		return 0
	}
	return *e.Position
}

// Normalize trims identifiers and derives a missing medal from the position.
func (e *Entry) Normalize() {
	e.CommunityID = strings.TrimSpace(e.CommunityID)
	e.SportID = strings.TrimSpace(e.SportID)
	if e.Medal == "" {
		e.Medal = MedalForPosition(e.Position)
	}
}

// Validate checks the field invariants of an entry. Reference checks are done elsewhere.
func (e Entry) Validate() error {
	if e.CommunityID == "" || e.SportID == "" {
		return ErrMissingReference
	}
	if e.Score < 0 {
		return ErrNegativeScore
	}
	if e.Position != nil && *e.Position < 1 {
		return ErrInvalidPosition
	}
	if !e.Medal.Valid() {
		return ErrInvalidMedal
	}
	if e.Medal != MedalForPosition(e.Position) {
		return ErrMedalMismatch
	}
	return nil
}

// EntryPatch carries the fields of an update. Nil fields are left unchanged.
// ClearPosition turns the entry into a participation-only entry.
type EntryPatch struct {
	Score         *int
	Position      *int
	ClearPosition bool
	Medal         *Medal
	Notes         *string
}

// Apply returns a copy of e with the patch applied. When the position changes
// and no medal is given, the medal follows the new position.
func (p EntryPatch) Apply(e Entry) Entry {
	out := e
	if p.Score != nil {
		out.Score = *p.Score
	}
	positionChanged := false
	switch {
	case p.ClearPosition:
		out.Position = nil
		positionChanged = true
	case p.Position != nil:
		pos := *p.Position
		out.Position = &pos
		positionChanged = true
	}
	if p.Medal != nil {
		out.Medal = *p.Medal
	} else if positionChanged {
		out.Medal = MedalForPosition(out.Position)
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	return out
}

// IntPtr is a small helper for optional positions.
func IntPtr(v int) *int {
	return &v
}
