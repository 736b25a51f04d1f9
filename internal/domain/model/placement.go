package model

// Placement is the tagged variant used where podiums are set: a medal slot or a
// participation result carrying its own score.
type Placement struct {
	kind  placementKind
	score int
}

type placementKind int

const (
	placementParticipant placementKind = iota
	placementGold
	placementSilver
	placementBronze
)

// Gold, Silver and Bronze are the three podium placements.
func Gold() Placement   { return Placement{kind: placementGold} }
func Silver() Placement { return Placement{kind: placementSilver} }
func Bronze() Placement { return Placement{kind: placementBronze} }

// Participant is an unplaced result worth score points.
func Participant(score int) Placement {
	return Placement{kind: placementParticipant, score: score}
}

// PlacementForPosition maps podium positions 1..3 to their placement.
func PlacementForPosition(pos int) (Placement, bool) {
	switch pos {
	case 1:
		return Gold(), true
	case 2:
		return Silver(), true
	case 3:
		return Bronze(), true
	}
	return Placement{}, false
}

// Medal returns the medal of the placement.
func (p Placement) Medal() Medal {
	switch p.kind {
	case placementGold:
		return MedalGold
	case placementSilver:
		return MedalSilver
	case placementBronze:
		return MedalBronze
	}
	return MedalNone
}

// Position returns the podium position, or nil for a participant.
func (p Placement) Position() *int {
	switch p.kind {
	case placementGold:
		return IntPtr(1)
	case placementSilver:
		return IntPtr(2)
	case placementBronze:
		return IntPtr(3)
	}
	return nil
}

// IsPodium reports whether the placement is a medal slot.
func (p Placement) IsPodium() bool {
	return p.kind != placementParticipant
}

// ParticipantScore returns the score of a participant placement.
func (p Placement) ParticipantScore() int {
	return p.score
}
