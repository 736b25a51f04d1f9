// Package scoring defines the points convention applied to podium placements.
package scoring

import (
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// Default points per medal.
const (
	DefaultGoldPoints   = 10
	DefaultSilverPoints = 7
	DefaultBronzePoints = 5
)

// Option applies a configuration option to the Scheme.
type Option func(*Scheme)

// WithPoints overrides the points awarded for gold, silver and bronze.
// Negative values are ignored.
func WithPoints(gold, silver, bronze int) Option {
	return func(s *Scheme) {
		if gold >= 0 {
			s.gold = gold
		}
		if silver >= 0 {
			s.silver = silver
		}
		if bronze >= 0 {
			s.bronze = bronze
		}
	}
}

// Scheme maps a placement to the flattened score, position and medal stored on an entry.
type Scheme struct {
	gold   int
	silver int
	bronze int
}

// NewScheme creates a scheme with the 10/7/5 convention unless overridden.
func NewScheme(opts ...Option) Scheme {
	s := Scheme{
		gold:   DefaultGoldPoints,
		silver: DefaultSilverPoints,
		bronze: DefaultBronzePoints,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Points returns the score implied by a placement.
func (s Scheme) Points(p model.Placement) int {
	switch p.Medal() {
	case model.MedalGold:
		return s.gold
	case model.MedalSilver:
		return s.silver
	case model.MedalBronze:
		return s.bronze
	}
	return p.ParticipantScore()
}

// Apply writes the score, position and medal of p onto e.
func (s Scheme) Apply(e *model.Entry, p model.Placement) {
	e.Score = s.Points(p)
	e.Position = p.Position()
	e.Medal = p.Medal()
}

// Check reports whether a podium entry carries the score its placement implies.
// Entries outside positions 1..3 are not constrained.
func (s Scheme) Check(e model.Entry) error {
	if e.Position == nil {
		return nil
	}
	p, ok := model.PlacementForPosition(*e.Position)
	if !ok {
		return nil
	}
	if want := s.Points(p); e.Score != want {
		return fmt.Errorf("%w: position %d scores %d, got %d", model.ErrValidation, *e.Position, want, e.Score)
	}
	return nil
}

// String renders the scheme for logs.
func (s Scheme) String() string {
	return fmt.Sprintf("gold=%d silver=%d bronze=%d", s.gold, s.silver, s.bronze)
}
