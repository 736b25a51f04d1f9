package podiumcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

const workerChannelMultiplier = 2

// Run submits cfg.Updates podium updates concurrently and verifies the final
// podiums and overall standings. Conflicts are counted, not treated as failures.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if len(cfg.Sports) == 0 || len(cfg.Communities) == 0 {
		return nil, fmt.Errorf("podium check needs at least one sport and one community")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting podium check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("updates", cfg.Updates),
		logger.Int("workers", cfg.Workers),
		logger.Int("sports", len(cfg.Sports)),
		logger.Int("communities", len(cfg.Communities)),
		logger.String("points", cfg.Scheme.String()),
	)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	updates := generateUpdates(cfg, cfg.Updates)
	stats.UpdatesGenerated = len(updates)

	submitUpdates(ctx, cfg, client, updates, stats, log)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("submission interrupted: %w", err)
	}

	if err := verify(ctx, cfg, client, stats); err != nil {
		return stats, fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *httpClient) error {
	resp, err := client.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// submitUpdates fans updates out to cfg.Workers goroutines.
func submitUpdates(ctx context.Context, cfg *Config, client *httpClient, updates []Update, stats *Stats, log logger.Logger) {
	var submitted, applied, conflicted, failed int64

	limiter := rate.NewLimiter(rate.Inf, cfg.Workers)
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}

	ch := make(chan Update, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range ch {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				res, err := client.putPodium(ctx, u)
				atomic.AddInt64(&submitted, 1)
				switch res {
				case outcomeApplied:
					atomic.AddInt64(&applied, 1)
				case outcomeConflict:
					atomic.AddInt64(&conflicted, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "podium update failed", logger.String("sport", u.SportID), logger.Error(err))
					}
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, u := range updates {
			select {
			case <-ctx.Done():
				return
			case ch <- u:
			}
		}
	}()
	wg.Wait()

	stats.UpdatesSubmitted = int(submitted)
	stats.UpdatesApplied = int(applied)
	stats.UpdatesConflicted = int(conflicted)
	stats.UpdatesFailed = int(failed)
	log.Info(ctx, "podium updates submitted",
		logger.Int("applied", stats.UpdatesApplied),
		logger.Int("conflicted", stats.UpdatesConflicted),
		logger.Int("failed", stats.UpdatesFailed),
	)
}

func verify(ctx context.Context, cfg *Config, client *httpClient, stats *Stats) error {
	for _, sportID := range cfg.Sports {
		var p model.Podium
		if err := client.getJSON(ctx, "/sports/"+url.PathEscape(sportID)+"/podium", &p); err != nil {
			return err
		}
		if err := verifyPodium(cfg.Scheme, p); err != nil {
			return err
		}
		stats.PodiumsVerified++
	}

	var board struct {
		Items []model.OverallStanding `json:"items"`
	}
	if err := client.getJSON(ctx, "/leaderboard", &board); err != nil {
		return err
	}
	entries := make(map[string][]model.Entry, len(board.Items))
	for _, s := range board.Items {
		var list struct {
			Items []model.Entry `json:"items"`
		}
		if err := client.getJSON(ctx, "/communities/"+url.PathEscape(s.CommunityID)+"/entries", &list); err != nil {
			return err
		}
		entries[s.CommunityID] = list.Items
	}
	if err := verifyStandings(board.Items, entries); err != nil {
		return err
	}
	stats.StandingsVerified = len(board.Items)
	return nil
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.UpdatesSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("updatesGenerated", stats.UpdatesGenerated),
		logger.Int("updatesSubmitted", stats.UpdatesSubmitted),
		logger.Int("updatesApplied", stats.UpdatesApplied),
		logger.Int("updatesConflicted", stats.UpdatesConflicted),
		logger.Int("updatesFailed", stats.UpdatesFailed),
		logger.Int("podiumsVerified", stats.PodiumsVerified),
		logger.Int("standingsVerified", stats.StandingsVerified),
		logger.Duration("duration", stats.Duration),
		logger.Any("updatesPerSecond", perSecond),
	)
}
