package podiumcheck

import (
	"errors"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// verifyPodium checks slot layout, distinct occupants and awarded points.
func verifyPodium(scheme scoring.Scheme, p model.Podium) error {
	seen := make(map[string]int, model.PodiumSlots)
	for i, slot := range p.Slots {
		pos := i + 1
		if slot.Position != pos {
			return fmt.Errorf("sport %s: slot %d reports position %d", p.SportID, pos, slot.Position)
		}
		if slot.Empty() {
			if slot.Display != model.EmptySlotLabel {
				return fmt.Errorf("sport %s: empty slot %d displays %q", p.SportID, pos, slot.Display)
			}
			continue
		}
		occ := slot.Occupant
		if occ.Position == nil || *occ.Position != pos || occ.Medal != model.MedalForPosition(occ.Position) {
			return fmt.Errorf("sport %s: occupant of slot %d is not placed there", p.SportID, pos)
		}
		if prev, dup := seen[occ.CommunityID]; dup {
			return fmt.Errorf("sport %s: %s holds slots %d and %d", p.SportID, occ.CommunityID, prev, pos)
		}
		seen[occ.CommunityID] = pos
		err := scheme.Check(model.Entry{
			CommunityID: occ.CommunityID,
			SportID:     p.SportID,
			Score:       occ.Score,
			Position:    occ.Position,
			Medal:       occ.Medal,
		})
		if err != nil {
			return fmt.Errorf("sport %s slot %d: %w", p.SportID, pos, err)
		}
	}
	for _, part := range p.Participants {
		if part.Rank <= model.PodiumSlots {
			return fmt.Errorf("sport %s: participant %s ranked %d inside the podium", p.SportID, part.CommunityID, part.Rank)
		}
	}
	return nil
}

// verifyStandings checks ordering, competition ranks and that every total is
// the sum of the community's entries.
func verifyStandings(standings []model.OverallStanding, entries map[string][]model.Entry) error {
	var errs []error
	for i, s := range standings {
		if i > 0 {
			prev := standings[i-1]
			switch {
			case s.TotalScore > prev.TotalScore:
				errs = append(errs, fmt.Errorf("row %d (%s) outscores the row above it", i, s.CommunityID))
			case s.TotalScore == prev.TotalScore && s.Rank != prev.Rank:
				errs = append(errs, fmt.Errorf("tied rows %d and %d have ranks %d and %d", i-1, i, prev.Rank, s.Rank))
			case s.TotalScore < prev.TotalScore && s.Rank != i+1:
				errs = append(errs, fmt.Errorf("row %d (%s) has rank %d, want %d", i, s.CommunityID, s.Rank, i+1))
			}
		} else if s.Rank != 1 {
			errs = append(errs, fmt.Errorf("top row has rank %d", s.Rank))
		}

		list, ok := entries[s.CommunityID]
		if !ok {
			continue
		}
		sum := 0
		for _, e := range list {
			sum += e.Score
		}
		if sum != s.TotalScore || len(list) != s.EntryCount {
			errs = append(errs, fmt.Errorf("%s: total %d over %d entries, entries sum to %d over %d",
				s.CommunityID, s.TotalScore, s.EntryCount, sum, len(list)))
		}
	}
	return errors.Join(errs...)
}
