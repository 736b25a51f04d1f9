package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/podium/pkg/metrics"
)

const (
	overallKey = "overall"

	// fillTimeout bounds a shared fill, which no single caller can cancel.
	fillTimeout = 30 * time.Second
)

func sportKey(sportID string) string { return "sport:" + sportID }

// viewCache is a read-through cache of ranking views.
//
// Every key carries a generation. A fill only lands if the generation it started
// under is still current, so a view computed before an invalidation is dropped.
type viewCache struct {
	mu      sync.Mutex
	epoch   uint64
	gens    map[string]uint64
	entries map[string]cached
	group   singleflight.Group
}

type cached struct {
	value any
}

type stamp struct {
	epoch uint64
	gen   uint64
}

func newViewCache() *viewCache {
	return &viewCache{
		gens:    make(map[string]uint64),
		entries: make(map[string]cached),
	}
}

// get returns the cached view of key or computes it once for concurrent callers.
//
// The shared fill runs detached from ctx so a caller that gives up does not fail
// the others waiting on it. Each caller still returns as soon as its own ctx is done.
func (c *viewCache) get(ctx context.Context, key, view string, compute func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		metrics.RecordCacheHit(view)
		return e.value, nil
	}
	st := stamp{epoch: c.epoch, gen: c.gens[key]}
	c.mu.Unlock()
	metrics.RecordCacheMiss(view)

	ch := c.group.DoChan(fmt.Sprintf("%s@%d.%d", key, st.epoch, st.gen), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return compute(fctx)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v := res.Val

	c.mu.Lock()
	if c.epoch == st.epoch && c.gens[key] == st.gen {
		c.entries[key] = cached{value: v}
	}
	c.mu.Unlock()
	return v, nil
}

// invalidate drops keys and bumps their generations.
func (c *viewCache) invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		c.gens[k]++
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// invalidateAll drops every key.
func (c *viewCache) invalidateAll() {
	c.mu.Lock()
	c.epoch++
	c.gens = make(map[string]uint64)
	c.entries = make(map[string]cached)
	c.mu.Unlock()
}

func (c *viewCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
