// Package repository persists score entries, one per (community, sport) pair.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Reader exposes the read side of the entry store. Unknown communities and
// sports yield empty results, never errors.
type Reader interface {
	// Get returns the entry of a community in a sport, if present.
	Get(ctx context.Context, communityID, sportID string) (model.Entry, bool, error)
	// GetByID returns ErrEntryNotFound when no entry has the id.
	GetByID(ctx context.Context, id string) (model.Entry, error)
	ListBySport(ctx context.Context, sportID string) ([]model.Entry, error)
	ListByCommunity(ctx context.Context, communityID string) ([]model.Entry, error)
	ListAll(ctx context.Context) ([]model.Entry, error)
}

// Writer exposes the write side of the entry store.
type Writer interface {
	// Put creates or replaces the entry for its (community, sport) pair. On replace
	// the stored id and creation time are kept. The stored entry is returned.
	Put(ctx context.Context, e model.Entry) (model.Entry, error)
	// Delete removes the entry of a community in a sport and reports whether one existed.
	Delete(ctx context.Context, communityID, sportID string) (bool, error)
}

// Tx is a unit of work opened by Store.Atomic.
type Tx interface {
	Reader
	Writer
	// Lock serializes transactions using the same key until they finish.
	Lock(ctx context.Context, key string) error
}

// Store provides access to the score entries.
type Store interface {
	Reader
	Writer

	// Atomic runs fn in one transaction. If fn fails or ctx is cancelled nothing
	// fn wrote is kept.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	// DeleteByCommunity and DeleteBySport remove every entry referencing a record
	// that is being removed from its directory.
	DeleteByCommunity(ctx context.Context, communityID string) (int, error)
	DeleteBySport(ctx context.Context, sportID string) (int, error)

	// Count returns the number of live entries.
	Count(ctx context.Context) (int, error)

	Close()
}

// References answers whether the records an entry points at exist.
type References interface {
	CommunityExists(ctx context.Context, id string) (bool, error)
	SportExists(ctx context.Context, id string) (bool, error)
}
