// Package directory resolves the communities and sports that score entries reference.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Community is a festival community.
type Community struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`
}

// Sport is a festival sport.
type Sport struct {
	ID   string `json:"id" koanf:"id"`
	Name string `json:"name" koanf:"name"`
}

// Communities looks up community records.
type Communities interface {
	// GetCommunity returns the community and whether it exists.
	GetCommunity(ctx context.Context, id string) (Community, bool, error)
	CommunityExists(ctx context.Context, id string) (bool, error)
}

// Sports looks up sport records.
type Sports interface {
	SportExists(ctx context.Context, id string) (bool, error)
}

// Directory is the union consumed by the leaderboard service.
type Directory interface {
	Communities
	Sports
}

// RemoveHook runs after a record has been removed from a directory.
type RemoveHook func(ctx context.Context, id string) error

// Directory errors.
var (
	ErrInvalidRecord = errors.New("invalid directory record")
	ErrNotFound      = errors.New("directory record not found")
)

func validate(id, name string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name for %q", ErrInvalidRecord, id)
	}
	return nil
}

// hooks holds removal callbacks shared by the implementations.
type hooks struct {
	community []RemoveHook
	sport     []RemoveHook
}

func (h *hooks) run(ctx context.Context, list []RemoveHook, id string) error {
	var errs []error
	for _, fn := range list {
		if err := fn(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
