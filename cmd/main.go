package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/podium/internal/adapters/directory"
	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/http/swagger"
	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// seedableDirectory is a directory that can be seeded and notifies on removal.
type seedableDirectory interface {
	directory.Directory
	Apply(ctx context.Context, seed directory.Seed) error
	OnRemoveCommunity(fn directory.RemoveHook)
	OnRemoveSport(fn directory.RemoveHook)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "podium exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires store, directory and service for the configured backend.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	var (
		store repository.Store
		dir   seedableDirectory
	)
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN, repository.WithLogger(log.Named("store")))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		store, dir = pg, directory.NewPostgres(pg.Pool())
	default:
		mem := directory.NewMemory()
		store, dir = repository.NewMemoryStore(mem, repository.WithLogger(log.Named("store"))), mem
	}

	if cfg.DirectorySeed != "" {
		seed, err := directory.LoadSeed(cfg.DirectorySeed)
		if err == nil {
			err = dir.Apply(ctx, seed)
		}
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("seed directory: %w", err)
		}
		log.Info(ctx, "directory seeded",
			logger.String("path", cfg.DirectorySeed),
			logger.Int("communities", len(seed.Communities)),
			logger.Int("sports", len(seed.Sports)),
		)
	}

	svc := service.New(store, dir,
		service.WithLogger(log.Named("service")),
		service.WithScheme(cfg.Scheme()),
		service.WithLockWait(cfg.LockWait()),
		service.WithCache(cfg.CacheEnabled),
	)
	dir.OnRemoveCommunity(svc.OnCommunityRemoved)
	dir.OnRemoveSport(svc.OnSportRemoved)
	return svc, nil
}

// newRouter mounts the docs and the business API on one chi router.
func newRouter(cfg *config.Config, svc *service.Service, log logger.Logger) http.Handler {
	apiServer := api.NewServer(svc, svc,
		api.WithLogger(log.Named("http")),
		api.WithRequestTimeout(cfg.RequestTimeout()),
	)
	r := apiServer.Router()
	swagger.Register(r)
	return r
}
