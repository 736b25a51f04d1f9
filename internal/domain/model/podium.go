package model

import "strings"

// PodiumSlots is the number of medal slots per sport.
const PodiumSlots = 3

// EmptySlotLabel is how an unoccupied podium slot is rendered.
const EmptySlotLabel = "-"

// PodiumRequest is the desired state of a sport's podium. Nil slots stay empty.
type PodiumRequest struct {
	First  *string `json:"first,omitempty"`
	Second *string `json:"second,omitempty"`
	Third  *string `json:"third,omitempty"`
}

// Slots returns the requested community per position, index 0 being first place.
// Blank ids count as unset.
func (r PodiumRequest) Slots() [PodiumSlots]string {
	var out [PodiumSlots]string
	for i, p := range []*string{r.First, r.Second, r.Third} {
		if p != nil {
			out[i] = strings.TrimSpace(*p)
		}
	}
	return out
}

// Validate rejects a community appearing in two slots.
func (r PodiumRequest) Validate() error {
	seen := make(map[string]struct{}, PodiumSlots)
	for _, id := range r.Slots() {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateCommunity
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Standing is a resolved display row for one community.
type Standing struct {
	CommunityID   string `json:"community_id"`
	CommunityName string `json:"community_name"`
	Score         int    `json:"score"`
	Position      *int   `json:"position,omitempty"`
	Medal         Medal  `json:"medal"`
	Rank          int    `json:"rank,omitempty"`
}

// Slot is one podium position and its occupant, if any.
type Slot struct {
	Position int       `json:"position"`
	Medal    Medal     `json:"medal"`
	Occupant *Standing `json:"occupant"`
	Display  string    `json:"display"`
}

// Empty reports whether nobody holds the slot.
func (s Slot) Empty() bool {
	return s.Occupant == nil
}

// Podium is the per-sport view: three slots plus the remaining participants.
type Podium struct {
	SportID      string            `json:"sport_id"`
	Slots        [PodiumSlots]Slot `json:"slots"`
	Participants []Standing        `json:"participants"`
}

// OverallStanding is one row of the overall community ranking.
type OverallStanding struct {
	CommunityID   string `json:"community_id"`
	CommunityName string `json:"community_name"`
	TotalScore    int    `json:"total_score"`
	EntryCount    int    `json:"entry_count"`
	Rank          int    `json:"rank"`
}
