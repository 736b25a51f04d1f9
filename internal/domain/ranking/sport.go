// Package ranking derives the read-side views of the leaderboard from score entries.
// Every function here is pure and safe for concurrent use.
package ranking

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Names resolves community ids to display names. A missing id renders as the id itself.
type Names map[string]string

// Name returns the display name of id.
func (n Names) Name(id string) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return id
}

// RankSport builds the podium of one sport from its entries.
//
// Slot k holds the first entry encountered with position k. Later entries with the
// same position, entries placed 4th or lower and unplaced entries are listed as
// participants: placed ones first by position, then unplaced ones by score
// descending, creation time ascending and id ascending.
func RankSport(sportID string, entries []model.Entry, names Names) model.Podium {
	podium := model.Podium{SportID: sportID}
	for i := range podium.Slots {
		pos := i + 1
		podium.Slots[i] = model.Slot{
			Position: pos,
			Medal:    model.MedalForPosition(&pos),
			Display:  model.EmptySlotLabel,
		}
	}

	var placed, unplaced []model.Entry
	for _, e := range entries {
		pos := e.PositionValue()
		if pos >= 1 && pos <= model.PodiumSlots && podium.Slots[pos-1].Empty() {
			occupant := standing(e, names)
			occupant.Rank = pos
			podium.Slots[pos-1].Occupant = &occupant
			podium.Slots[pos-1].Display = occupant.CommunityName
			continue
		}
		if e.Placed() {
			placed = append(placed, e)
		} else {
			unplaced = append(unplaced, e)
		}
	}

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].PositionValue() < placed[j].PositionValue()
	})
	sort.SliceStable(unplaced, func(i, j int) bool {
		a, b := unplaced[i], unplaced[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	podium.Participants = make([]model.Standing, 0, len(placed)+len(unplaced))
	for _, e := range append(placed, unplaced...) {
		s := standing(e, names)
		s.Rank = model.PodiumSlots + len(podium.Participants) + 1
		podium.Participants = append(podium.Participants, s)
	}
	return podium
}

func standing(e model.Entry, names Names) model.Standing {
	s := model.Standing{
		CommunityID:   e.CommunityID,
		CommunityName: names.Name(e.CommunityID),
		Score:         e.Score,
		Medal:         e.Medal,
	}
	if e.Position != nil {
		pos := *e.Position
		s.Position = &pos
	}
	return s
}
