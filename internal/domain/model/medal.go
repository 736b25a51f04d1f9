package model

import (
	"fmt"
	"strings"
)

// Medal classifies a placement. It is derived from the position and stored for display.
type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
	MedalNone   Medal = "none"
)

// ParseMedal parses a medal name, case-insensitively. Empty input yields "".
func ParseMedal(s string) (Medal, error) {
	m := Medal(strings.ToLower(strings.TrimSpace(s)))
	if m == "" || m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMedal, s)
}

// Valid reports whether m is one of the known medals.
func (m Medal) Valid() bool {
	switch m {
	case MedalGold, MedalSilver, MedalBronze, MedalNone:
		return true
	}
	return false
}

// MedalForPosition returns the medal conventionally attached to a position.
func MedalForPosition(pos *int) Medal {
	if pos == nil {
		return MedalNone
	}
	switch *pos {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	}
	return MedalNone
}
