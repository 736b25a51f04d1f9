package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of them,
// so callers classify with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Specific errors.
var (
	ErrDuplicateCommunity = fmt.Errorf("%w: community assigned to more than one podium slot", ErrValidation)
	ErrUnknownCommunity   = fmt.Errorf("%w: unknown community", ErrValidation)
	ErrUnknownSport       = fmt.Errorf("%w: unknown sport", ErrValidation)
	ErrMissingReference   = fmt.Errorf("%w: community and sport ids are required", ErrValidation)
	ErrNegativeScore      = fmt.Errorf("%w: score must not be negative", ErrValidation)
	ErrInvalidPosition    = fmt.Errorf("%w: position must be at least 1", ErrValidation)
	ErrInvalidMedal       = fmt.Errorf("%w: unknown medal", ErrValidation)
	ErrMedalMismatch      = fmt.Errorf("%w: medal does not match position", ErrValidation)
	ErrPositionTaken      = fmt.Errorf("%w: position already held in this sport", ErrValidation)
	ErrEntryExists        = fmt.Errorf("%w: entry already exists for community and sport", ErrValidation)

	ErrEntryNotFound = fmt.Errorf("%w: score entry", ErrNotFound)

	ErrPodiumBusy = fmt.Errorf("%w: another update for this sport is in progress", ErrConflict)
)

// Kind returns the short name of the error kind wrapped by err, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
