// Package api serves the leaderboard over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxBodyBytes          = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	PodiumDependencies
	EntryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	podiumHandler      *PodiumHandler
	entryHandler       *EntryHandler

	requestTimeout time.Duration
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRequestTimeout bounds the context of every request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used for request and failure logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		requestTimeout: defaultRequestTimeout,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.logger)
	s.podiumHandler = NewPodiumHandler(deps, s.logger)
	s.entryHandler = NewEntryHandler(deps, s.logger)
	return s
}

// Router builds the chi router with every API route attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

	r.Get("/sports/{sportID}/podium", MetricsMiddleware(s.podiumHandler.HandleGetPodium, "podium"))
	r.Put("/sports/{sportID}/podium", MetricsMiddleware(s.podiumHandler.HandleSetPodium, "podium"))
	r.Get("/sports/{sportID}/entries", MetricsMiddleware(s.entryHandler.HandleListSportEntries, "sport_entries"))
	r.Get("/communities/{communityID}/entries", MetricsMiddleware(s.entryHandler.HandleListCommunityEntries, "community_entries"))

	r.Post("/entries", MetricsMiddleware(s.entryHandler.HandleCreateEntry, "entries"))
	r.Get("/entries/{entryID}", MetricsMiddleware(s.entryHandler.HandleGetEntry, "entry"))
	r.Patch("/entries/{entryID}", MetricsMiddleware(s.entryHandler.HandleUpdateEntry, "entry"))
	r.Delete("/entries/{entryID}", MetricsMiddleware(s.entryHandler.HandleDeleteEntry, "entry"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status. Server errors are logged and their cause hidden.
func writeError(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed",
			logger.String("request_id", middleware.GetReqID(ctx)),
			logger.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	if dec.More() {
		return NewKind(op, ErrBadRequest)
	}
	return nil
}

func entriesResponse(entries []model.Entry) listResponse[model.Entry] {
	if entries == nil {
		entries = []model.Entry{}
	}
	return listResponse[model.Entry]{Items: entries}
}
