// Package service implements the leaderboard engine used by the HTTP API:
// podium and raw entry mutations plus the derived ranking views.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/directory"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const defaultLockWait = 5 * time.Second

// Service coordinates writes to the entry store and computes rankings on read.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	dir    directory.Directory
	scheme scoring.Scheme
	locks  *keyedMutex
	cache  *viewCache

	// Configuration
	lockWait     time.Duration
	cacheEnabled bool

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScheme sets the points awarded to podium placements.
func WithScheme(scheme scoring.Scheme) Option {
	return func(s *Service) {
		s.scheme = scheme
	}
}

// WithLockWait bounds how long a write waits for its sport before failing with a conflict.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithCache enables the read-through ranking cache.
func WithCache(enabled bool) Option {
	return func(s *Service) {
		s.cacheEnabled = enabled
	}
}

// New constructs a Service over store, resolving references through dir.
func New(store repository.Store, dir directory.Directory, opts ...Option) *Service {
	s := &Service{
		store:    store,
		dir:      dir,
		scheme:   scoring.NewScheme(),
		locks:    newKeyedMutex(),
		lockWait: defaultLockWait,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheEnabled {
		s.cache = newViewCache()
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateStoreEntries(n)
	}
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "leaderboard service started",
		logger.String("points", s.scheme.String()),
		logger.Bool("cache", s.cacheEnabled),
		logger.Duration("lockWait", s.lockWait),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.store.Close()
	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"points":       s.scheme.String(),
		"cacheEnabled": s.cacheEnabled,
		"lockWaitMs":   s.lockWait.Milliseconds(),
		"lockedSports": s.locks.size(),
	}
	if s.started {
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		if n, err := s.store.Count(context.Background()); err == nil {
			stats["totalEntries"] = n
			metrics.UpdateStoreEntries(n)
		}
	}
	if s.cache != nil {
		stats["cachedViews"] = s.cache.len()
	}
	return stats
}

// OnCommunityRemoved drops the entries of a removed community. It is registered
// as a directory removal hook.
func (s *Service) OnCommunityRemoved(ctx context.Context, communityID string) error {
	n, err := s.store.DeleteByCommunity(ctx, communityID)
	if s.cache != nil {
		s.cache.invalidateAll()
	}
	if err != nil {
		metrics.RecordErrorByComponent("coordinator", "cascade")
		return err
	}
	s.logger.Info(ctx, "community removed", logger.String("community", communityID), logger.Int("entries", n))
	return nil
}

// OnSportRemoved drops the entries of a removed sport.
func (s *Service) OnSportRemoved(ctx context.Context, sportID string) error {
	unlock, err := s.lockSport(ctx, sportID)
	if err != nil {
		return err
	}
	defer unlock()

	n, err := s.store.DeleteBySport(ctx, sportID)
	s.invalidate(sportID)
	if err != nil {
		metrics.RecordErrorByComponent("coordinator", "cascade")
		return err
	}
	s.logger.Info(ctx, "sport removed", logger.String("sport", sportID), logger.Int("entries", n))
	return nil
}

func (s *Service) invalidate(sportID string) {
	if s.cache != nil {
		s.cache.invalidate(sportKey(sportID), overallKey)
	}
}
