package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// SetSportPodium replaces the placed entries of a sport with the requested podium.
//
// Specified communities are upserted with the points, position and medal of their
// slot. Placed entries of any other community are deleted. Participation entries
// without a position are left alone. All writes commit together or not at all.
// The returned podium is read before any later write to the sport can land.
func (s *Service) SetSportPodium(ctx context.Context, sportID string, req model.PodiumRequest) (model.Podium, error) {
	sportID = strings.TrimSpace(sportID)
	podium, err := s.setSportPodium(ctx, sportID, req)
	metrics.RecordPodiumUpdate(model.Kind(err))
	if err != nil {
		s.recordError(ctx, "set podium", err, logger.String("sport", sportID))
		return model.Podium{}, err
	}
	return podium, nil
}

func (s *Service) setSportPodium(ctx context.Context, sportID string, req model.PodiumRequest) (model.Podium, error) {
	if err := req.Validate(); err != nil {
		return model.Podium{}, err
	}
	if err := s.checkSport(ctx, sportID); err != nil {
		return model.Podium{}, err
	}
	slots := req.Slots()
	for _, communityID := range slots {
		if communityID == "" {
			continue
		}
		if err := s.checkCommunity(ctx, communityID); err != nil {
			return model.Podium{}, err
		}
	}

	unlock, err := s.lockSport(ctx, sportID)
	if err != nil {
		return model.Podium{}, err
	}
	defer unlock()

	var deleted, written int
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.Lock(ctx, sportKey(sportID)); err != nil {
			return err
		}
		existing, err := tx.ListBySport(ctx, sportID)
		if err != nil {
			return err
		}

		wanted := make(map[string]struct{}, model.PodiumSlots)
		for _, id := range slots {
			if id != "" {
				wanted[id] = struct{}{}
			}
		}
		notes := make(map[string]string, len(existing))
		for _, e := range existing {
			notes[e.CommunityID] = e.Notes
			if _, keep := wanted[e.CommunityID]; keep || !e.Placed() {
				continue
			}
			if _, err := tx.Delete(ctx, e.CommunityID, sportID); err != nil {
				return fmt.Errorf("remove %q from podium: %w", e.CommunityID, err)
			}
			deleted++
		}

		for i, communityID := range slots {
			if communityID == "" {
				continue
			}
			placement, _ := model.PlacementForPosition(i + 1)
			e := model.Entry{CommunityID: communityID, SportID: sportID, Notes: notes[communityID]}
			s.scheme.Apply(&e, placement)
			if _, err := tx.Put(ctx, e); err != nil {
				return fmt.Errorf("place %q at %d: %w", communityID, i+1, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return model.Podium{}, err
	}
	s.invalidate(sportID)

	s.logger.Info(ctx, "podium updated",
		logger.String("sport", sportID),
		logger.String("first", slots[0]),
		logger.String("second", slots[1]),
		logger.String("third", slots[2]),
		logger.Int("written", written),
		logger.Int("deleted", deleted),
	)

	podium, err := s.sportPodium(ctx, sportID)
	if err != nil {
		return model.Podium{}, fmt.Errorf("read updated podium: %w", err)
	}
	return podium, nil
}

// CreateEntry stores a new entry. An existing entry for the same community and
// sport is rejected; use UpdateEntry to change it.
func (s *Service) CreateEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	out, err := s.createEntry(ctx, e)
	metrics.RecordEntryMutation("create", model.Kind(err))
	if err != nil {
		s.recordError(ctx, "create entry", err, logger.String("sport", e.SportID), logger.String("community", e.CommunityID))
	}
	return out, err
}

func (s *Service) createEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return model.Entry{}, err
	}
	if err := s.checkSport(ctx, e.SportID); err != nil {
		return model.Entry{}, err
	}
	if err := s.checkCommunity(ctx, e.CommunityID); err != nil {
		return model.Entry{}, err
	}

	unlock, err := s.lockSport(ctx, e.SportID)
	if err != nil {
		return model.Entry{}, err
	}
	defer unlock()

	var out model.Entry
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.Lock(ctx, sportKey(e.SportID)); err != nil {
			return err
		}
		_, exists, err := tx.Get(ctx, e.CommunityID, e.SportID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q in %q", model.ErrEntryExists, e.CommunityID, e.SportID)
		}
		out, err = tx.Put(ctx, e)
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}
	s.invalidate(e.SportID)
	s.logger.Debug(ctx, "entry created", logger.String("id", out.ID), logger.String("sport", out.SportID))
	return out, nil
}

// UpdateEntry applies patch to the entry with id. The community and sport of an
// entry never change.
func (s *Service) UpdateEntry(ctx context.Context, id string, patch model.EntryPatch) (model.Entry, error) {
	out, err := s.updateEntry(ctx, id, patch)
	metrics.RecordEntryMutation("update", model.Kind(err))
	if err != nil {
		s.recordError(ctx, "update entry", err, logger.String("id", id))
	}
	return out, err
}

func (s *Service) updateEntry(ctx context.Context, id string, patch model.EntryPatch) (model.Entry, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}

	unlock, err := s.lockSport(ctx, current.SportID)
	if err != nil {
		return model.Entry{}, err
	}
	defer unlock()

	var out model.Entry
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.Lock(ctx, sportKey(current.SportID)); err != nil {
			return err
		}
		// Re-read under the lock; it may have been removed meanwhile.
		e, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := patch.Apply(e)
		next.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		out, err = tx.Put(ctx, next)
		return err
	})
	if err != nil {
		return model.Entry{}, err
	}
	s.invalidate(current.SportID)
	s.logger.Debug(ctx, "entry updated", logger.String("id", id), logger.String("sport", out.SportID))
	return out, nil
}

// DeleteEntry removes the entry with id.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	err := s.deleteEntry(ctx, id)
	metrics.RecordEntryMutation("delete", model.Kind(err))
	if err != nil {
		s.recordError(ctx, "delete entry", err, logger.String("id", id))
	}
	return err
}

func (s *Service) deleteEntry(ctx context.Context, id string) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	unlock, err := s.lockSport(ctx, current.SportID)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.Lock(ctx, sportKey(current.SportID)); err != nil {
			return err
		}
		e, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		_, err = tx.Delete(ctx, e.CommunityID, e.SportID)
		return err
	})
	if err != nil {
		return err
	}
	s.invalidate(current.SportID)
	s.logger.Debug(ctx, "entry deleted", logger.String("id", id), logger.String("sport", current.SportID))
	return nil
}

// lockSport acquires the write lock of a sport, waiting at most lockWait.
func (s *Service) lockSport(ctx context.Context, sportID string) (func(), error) {
	start := time.Now()
	lctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	unlock, err := s.locks.Lock(lctx, sportID)
	metrics.RecordLockWait(float64(time.Since(start).Microseconds()) / 1000)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("wait for sport %q: %w", sportID, ctx.Err())
	}
	metrics.RecordLockConflict()
	return nil, fmt.Errorf("%w: sport %q", model.ErrPodiumBusy, sportID)
}

func (s *Service) checkSport(ctx context.Context, sportID string) error {
	if sportID == "" {
		return model.ErrMissingReference
	}
	ok, err := s.dir.SportExists(ctx, sportID)
	if err != nil {
		return fmt.Errorf("lookup sport %q: %w", sportID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrUnknownSport, sportID)
	}
	return nil
}

func (s *Service) checkCommunity(ctx context.Context, communityID string) error {
	ok, err := s.dir.CommunityExists(ctx, communityID)
	if err != nil {
		return fmt.Errorf("lookup community %q: %w", communityID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrUnknownCommunity, communityID)
	}
	return nil
}

// recordError logs and counts a failed operation. Client errors log at debug.
func (s *Service) recordError(ctx context.Context, op string, err error, fields ...logger.Field) {
	kind := model.Kind(err)
	metrics.RecordErrorByComponent("coordinator", kind)
	fields = append(fields, logger.String("op", op), logger.String("kind", kind), logger.Error(err))
	switch {
	case kind == "internal" && !errors.Is(err, context.Canceled):
		s.logger.Error(ctx, "leaderboard operation failed", fields...)
	case kind == "conflict":
		s.logger.Warn(ctx, "leaderboard operation rejected", fields...)
	default:
		s.logger.Debug(ctx, "leaderboard operation rejected", fields...)
	}
}
