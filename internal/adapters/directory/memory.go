package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process directory.
type Memory struct {
	mu          sync.RWMutex
	communities map[string]Community
	sports      map[string]Sport
	hooksMu     sync.Mutex
	hooks       hooks
}

// NewMemory creates an empty directory.
func NewMemory() *Memory {
	return &Memory{
		communities: make(map[string]Community),
		sports:      make(map[string]Sport),
	}
}

// Apply adds every record of seed, replacing records with the same id.
func (m *Memory) Apply(_ context.Context, seed Seed) error {
	for _, c := range seed.Communities {
		if err := m.AddCommunity(c); err != nil {
			return err
		}
	}
	for _, s := range seed.Sports {
		if err := m.AddSport(s); err != nil {
			return err
		}
	}
	return nil
}

// AddCommunity adds or renames a community.
func (m *Memory) AddCommunity(c Community) error {
	c.ID, c.Name = strings.TrimSpace(c.ID), strings.TrimSpace(c.Name)
	if err := validate(c.ID, c.Name); err != nil {
		return err
	}
	m.mu.Lock()
	m.communities[c.ID] = c
	m.mu.Unlock()
	return nil
}

// AddSport adds or renames a sport.
func (m *Memory) AddSport(s Sport) error {
	s.ID, s.Name = strings.TrimSpace(s.ID), strings.TrimSpace(s.Name)
	if err := validate(s.ID, s.Name); err != nil {
		return err
	}
	m.mu.Lock()
	m.sports[s.ID] = s
	m.mu.Unlock()
	return nil
}

// GetCommunity returns the community with id.
func (m *Memory) GetCommunity(_ context.Context, id string) (Community, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.communities[id]
	return c, ok, nil
}

// CommunityExists reports whether a community with id exists.
func (m *Memory) CommunityExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.communities[id]
	return ok, nil
}

// SportExists reports whether a sport with id exists.
func (m *Memory) SportExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sports[id]
	return ok, nil
}

// ListCommunities returns all communities ordered by id.
func (m *Memory) ListCommunities(_ context.Context) ([]Community, error) {
	m.mu.RLock()
	out := make([]Community, 0, len(m.communities))
	for _, c := range m.communities {
		out = append(out, c)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListSports returns all sports ordered by id.
func (m *Memory) ListSports(_ context.Context) ([]Sport, error) {
	m.mu.RLock()
	out := make([]Sport, 0, len(m.sports))
	for _, s := range m.sports {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OnRemoveCommunity registers a hook run after a community is removed.
func (m *Memory) OnRemoveCommunity(fn RemoveHook) {
	m.hooksMu.Lock()
	m.hooks.community = append(m.hooks.community, fn)
	m.hooksMu.Unlock()
}

// OnRemoveSport registers a hook run after a sport is removed.
func (m *Memory) OnRemoveSport(fn RemoveHook) {
	m.hooksMu.Lock()
	m.hooks.sport = append(m.hooks.sport, fn)
	m.hooksMu.Unlock()
}

// RemoveCommunity deletes a community and runs the removal hooks.
// Hooks run after the directory lock is released.
func (m *Memory) RemoveCommunity(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.communities[id]
	delete(m.communities, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: community %q", ErrNotFound, id)
	}
	m.hooksMu.Lock()
	list := append([]RemoveHook(nil), m.hooks.community...)
	m.hooksMu.Unlock()
	return m.hooks.run(ctx, list, id)
}

// RemoveSport deletes a sport and runs the removal hooks.
func (m *Memory) RemoveSport(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sports[id]
	delete(m.sports, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: sport %q", ErrNotFound, id)
	}
	m.hooksMu.Lock()
	list := append([]RemoveHook(nil), m.hooks.sport...)
	m.hooksMu.Unlock()
	return m.hooks.run(ctx, list, id)
}
