package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/ranking"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// OverallRanking ranks every community with at least one entry by total score.
func (s *Service) OverallRanking(ctx context.Context) ([]model.OverallStanding, error) {
	compute := func(ctx context.Context) (any, error) {
		start := time.Now()
		entries, err := s.store.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		names, err := s.names(ctx, entries)
		if err != nil {
			return nil, err
		}
		rows := ranking.RankOverall(entries, names)
		metrics.RecordRankingDuration("overall", float64(time.Since(start).Microseconds())/1000)
		metrics.UpdateRankedCommunities(len(rows))
		return rows, nil
	}

	v, err := s.view(ctx, overallKey, "overall", compute)
	if err != nil {
		s.recordError(ctx, "overall ranking", err)
		return nil, err
	}
	rows := v.([]model.OverallStanding)
	return append([]model.OverallStanding(nil), rows...), nil
}

// SportPodium returns the podium of a sport. Unknown sports yield an empty podium.
func (s *Service) SportPodium(ctx context.Context, sportID string) (model.Podium, error) {
	sportID = strings.TrimSpace(sportID)
	podium, err := s.sportPodium(ctx, sportID)
	if err != nil {
		s.recordError(ctx, "sport podium", err, logger.String("sport", sportID))
		return model.Podium{}, err
	}
	return podium, nil
}

func (s *Service) sportPodium(ctx context.Context, sportID string) (model.Podium, error) {
	compute := func(ctx context.Context) (any, error) {
		start := time.Now()
		entries, err := s.store.ListBySport(ctx, sportID)
		if err != nil {
			return nil, fmt.Errorf("list entries of %q: %w", sportID, err)
		}
		names, err := s.names(ctx, entries)
		if err != nil {
			return nil, err
		}
		podium := ranking.RankSport(sportID, entries, names)
		metrics.RecordRankingDuration("podium", float64(time.Since(start).Microseconds())/1000)
		return podium, nil
	}

	v, err := s.view(ctx, sportKey(sportID), "podium", compute)
	if err != nil {
		return model.Podium{}, err
	}
	podium := v.(model.Podium)
	podium.Participants = append([]model.Standing(nil), podium.Participants...)
	return podium, nil
}

// GetEntry returns the entry with id.
func (s *Service) GetEntry(ctx context.Context, id string) (model.Entry, error) {
	return s.store.GetByID(ctx, id)
}

// ListSportEntries returns the raw entries of a sport.
func (s *Service) ListSportEntries(ctx context.Context, sportID string) ([]model.Entry, error) {
	return s.store.ListBySport(ctx, sportID)
}

// ListCommunityEntries returns the raw entries of a community.
func (s *Service) ListCommunityEntries(ctx context.Context, communityID string) ([]model.Entry, error) {
	return s.store.ListByCommunity(ctx, communityID)
}

func (s *Service) view(ctx context.Context, key, name string, compute func(context.Context) (any, error)) (any, error) {
	if s.cache == nil {
		return compute(ctx)
	}
	return s.cache.get(ctx, key, name, compute)
}

// names resolves the communities referenced by entries.
func (s *Service) names(ctx context.Context, entries []model.Entry) (ranking.Names, error) {
	names := make(ranking.Names)
	for _, e := range entries {
		if _, done := names[e.CommunityID]; done {
			continue
		}
		c, ok, err := s.dir.GetCommunity(ctx, e.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("lookup community %q: %w", e.CommunityID, err)
		}
		if !ok {
			s.logger.Warn(ctx, "entry references unknown community", logger.String("community", e.CommunityID))
		}
		names[e.CommunityID] = c.Name
	}
	return names, nil
}
