package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const memoryBackend = "memory"

type pairKey struct {
	community string
	sport     string
}

// MemoryStore keeps entries in process memory.
//
// Writers hold the write lock for a whole transaction and readers take the read
// lock, so a reader never observes a partially applied transaction.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]model.Entry
	byPair map[pairKey]string
	refs   References
	opts   options
	closed bool
}

// NewMemoryStore creates an empty store checking references against refs.
func NewMemoryStore(refs References, opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		byID:   make(map[string]model.Entry),
		byPair: make(map[pairKey]string),
		refs:   refs,
		opts:   o,
	}
}

// Get returns the entry of a community in a sport.
func (s *MemoryStore) Get(ctx context.Context, communityID, sportID string) (model.Entry, bool, error) {
	defer observe("get", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memTx{s: s}).Get(ctx, communityID, sportID)
}

// GetByID returns the entry with the given id.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (model.Entry, error) {
	defer observe("get_by_id", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memTx{s: s}).GetByID(ctx, id)
}

// ListBySport returns the entries of a sport ordered by creation.
func (s *MemoryStore) ListBySport(ctx context.Context, sportID string) ([]model.Entry, error) {
	defer observe("list_by_sport", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memTx{s: s}).ListBySport(ctx, sportID)
}

// ListByCommunity returns the entries of a community ordered by creation.
func (s *MemoryStore) ListByCommunity(ctx context.Context, communityID string) ([]model.Entry, error) {
	defer observe("list_by_community", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memTx{s: s}).ListByCommunity(ctx, communityID)
}

// ListAll returns every entry ordered by creation.
func (s *MemoryStore) ListAll(ctx context.Context) ([]model.Entry, error) {
	defer observe("list_all", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memTx{s: s}).ListAll(ctx)
}

// Put upserts a single entry.
func (s *MemoryStore) Put(ctx context.Context, e model.Entry) (model.Entry, error) {
	var out model.Entry
	err := s.Atomic(ctx, func(tx Tx) error {
		var err error
		out, err = tx.Put(ctx, e)
		return err
	})
	return out, err
}

// Delete removes a single entry.
func (s *MemoryStore) Delete(ctx context.Context, communityID, sportID string) (bool, error) {
	var deleted bool
	err := s.Atomic(ctx, func(tx Tx) error {
		var err error
		deleted, err = tx.Delete(ctx, communityID, sportID)
		return err
	})
	return deleted, err
}

// Atomic runs fn under the write lock and undoes its writes on failure.
// Position uniqueness of every touched sport is checked before committing.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Tx) error) (err error) {
	defer observe("atomic", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	tx := &memTx{s: s, touched: make(map[string]struct{})}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
		if err != nil {
			tx.rollback()
			return
		}
		metrics.UpdateStoreEntries(len(s.byID))
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	return tx.checkPositions()
}

// DeleteByCommunity removes every entry of a community.
func (s *MemoryStore) DeleteByCommunity(ctx context.Context, communityID string) (int, error) {
	return s.deleteWhere(ctx, func(e model.Entry) bool { return e.CommunityID == communityID })
}

// DeleteBySport removes every entry of a sport.
func (s *MemoryStore) DeleteBySport(ctx context.Context, sportID string) (int, error) {
	return s.deleteWhere(ctx, func(e model.Entry) bool { return e.SportID == sportID })
}

func (s *MemoryStore) deleteWhere(ctx context.Context, match func(model.Entry) bool) (int, error) {
	defer observe("delete_cascade", time.Now())
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.byID {
		if match(e) {
			delete(s.byID, id)
			delete(s.byPair, pairKey{e.CommunityID, e.SportID})
			n++
		}
	}
	metrics.UpdateStoreEntries(len(s.byID))
	return n, nil
}

// Count returns the number of live entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Close rejects further writes.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// memTx operates on the store's maps. The caller holds the store lock.
type memTx struct {
	s       *MemoryStore
	undo    []func()
	touched map[string]struct{}
}

func (t *memTx) Get(ctx context.Context, communityID, sportID string) (model.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Entry{}, false, err
	}
	id, ok := t.s.byPair[pairKey{communityID, sportID}]
	if !ok {
		return model.Entry{}, false, nil
	}
	return t.s.byID[id], true, nil
}

func (t *memTx) GetByID(ctx context.Context, id string) (model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return model.Entry{}, err
	}
	e, ok := t.s.byID[id]
	if !ok {
		return model.Entry{}, model.ErrEntryNotFound
	}
	return e, nil
}

func (t *memTx) ListBySport(ctx context.Context, sportID string) ([]model.Entry, error) {
	return t.list(ctx, func(e model.Entry) bool { return e.SportID == sportID })
}

func (t *memTx) ListByCommunity(ctx context.Context, communityID string) ([]model.Entry, error) {
	return t.list(ctx, func(e model.Entry) bool { return e.CommunityID == communityID })
}

func (t *memTx) ListAll(ctx context.Context) ([]model.Entry, error) {
	return t.list(ctx, func(model.Entry) bool { return true })
}

func (t *memTx) list(ctx context.Context, match func(model.Entry) bool) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Entry, 0)
	for _, e := range t.s.byID {
		if match(e) {
			out = append(out, e)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (t *memTx) Put(ctx context.Context, e model.Entry) (model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return model.Entry{}, err
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return model.Entry{}, err
	}
	if err := t.checkReferences(ctx, e.CommunityID, e.SportID); err != nil {
		return model.Entry{}, err
	}

	now := t.s.opts.clock.Now().UTC()
	key := pairKey{e.CommunityID, e.SportID}
	if id, ok := t.s.byPair[key]; ok {
		prev := t.s.byID[id]
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
		t.undo = append(t.undo, func() { t.s.byID[id] = prev })
	} else {
		e.ID = uuid.NewString()
		e.CreatedAt = now
		id := e.ID
		t.undo = append(t.undo, func() {
			delete(t.s.byID, id)
			delete(t.s.byPair, key)
		})
	}
	e.UpdatedAt = now
	t.s.byID[e.ID] = e
	t.s.byPair[key] = e.ID
	t.touched[e.SportID] = struct{}{}
	return e, nil
}

func (t *memTx) Delete(ctx context.Context, communityID, sportID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := t.checkReferences(ctx, communityID, sportID); err != nil {
		return false, err
	}
	key := pairKey{communityID, sportID}
	id, ok := t.s.byPair[key]
	if !ok {
		return false, nil
	}
	prev := t.s.byID[id]
	delete(t.s.byID, id)
	delete(t.s.byPair, key)
	t.undo = append(t.undo, func() {
		t.s.byID[id] = prev
		t.s.byPair[key] = id
	})
	return true, nil
}

// Lock is a no-op: the transaction already holds the store's write lock.
func (t *memTx) Lock(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (t *memTx) checkReferences(ctx context.Context, communityID, sportID string) error {
	if t.s.refs == nil {
		return nil
	}
	ok, err := t.s.refs.CommunityExists(ctx, communityID)
	if err != nil {
		return fmt.Errorf("check community %q: %w", communityID, err)
	}
	if !ok {
		return fmt.Errorf("%w: community %q", ErrReferenceNotFound, communityID)
	}
	ok, err = t.s.refs.SportExists(ctx, sportID)
	if err != nil {
		return fmt.Errorf("check sport %q: %w", sportID, err)
	}
	if !ok {
		return fmt.Errorf("%w: sport %q", ErrReferenceNotFound, sportID)
	}
	return nil
}

// checkPositions rejects two entries of one sport sharing a position.
func (t *memTx) checkPositions() error {
	for sport := range t.touched {
		seen := make(map[int]string)
		for _, e := range t.s.byID {
			if e.SportID != sport || e.Position == nil {
				continue
			}
			if other, dup := seen[*e.Position]; dup {
				return fmt.Errorf("%w: sport %q position %d held by %q and %q",
					model.ErrPositionTaken, sport, *e.Position, other, e.CommunityID)
			}
			seen[*e.Position] = e.CommunityID
		}
	}
	return nil
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	if len(t.undo) > 0 {
		t.s.opts.logger.Debug(context.Background(), "memory transaction rolled back",
			logger.Int("writes", len(t.undo)))
	}
	t.undo = nil
}

func sortByCreation(entries []model.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(memoryBackend, op, float64(time.Since(start).Microseconds())/1000)
}
