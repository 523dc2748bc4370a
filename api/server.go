// Package api provides the HTTP surface of the market-data engine.
//
// It exposes snapshot, chart and comparison endpoints over the resolver and
// streams watchlist refreshes to WebSocket clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/marketdata/internal/config"
	"github.com/seenimoa/marketdata/internal/watch"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

// MaxCompareSymbols caps a single comparison request.
const MaxCompareSymbols = 10

// Resolver is the market-data engine behind the API.
type Resolver interface {
	GetSnapshot(ctx context.Context, symbol string) *models.Snapshot
	GetChart(ctx context.Context, symbol string, period models.Period, interval string) *models.Chart
	CompareSnapshots(ctx context.Context, symbols []string) []*models.Snapshot
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	resolver Resolver
	watcher  *watch.Watcher
	wsHub    *WSHub
	logger   *slog.Logger
	version  string
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithWatcher streams the watcher's refreshes to WebSocket clients and
// exposes its watchlist.
func WithWatcher(w *watch.Watcher) Option {
	return func(s *Server) { s.watcher = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, r Resolver, opts ...Option) *Server {
	srv := &Server{
		cfg:      cfg,
		resolver: r,
		logger:   slog.Default(),
		version:  "dev",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.wsHub = NewWSHub(srv.logger)
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	if s.watcher != nil {
		updates, unsubscribe := s.watcher.Subscribe(4)
		defer unsubscribe()
		go s.wsHub.Stream(hubCtx, updates)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Market data
		r.Get("/snapshot/{symbol}", s.handleSnapshot)
		r.Get("/chart/{symbol}", s.handleChart)
		r.Get("/compare", s.handleCompare)

		r.Get("/watchlist", s.handleWatchlist)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CompareResponse is the body of GET /api/v1/compare.
type CompareResponse struct {
	Symbols   []string           `json:"symbols"`
	Snapshots []*models.Snapshot `json:"snapshots"`
}

// WatchlistResponse is the body of GET /api/v1/watchlist.
type WatchlistResponse struct {
	Symbols  []string `json:"symbols"`
	Schedule string   `json:"schedule"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": s.version,
			"market_status": map[models.Market]string{
				models.MarketEquityIN: utils.MarketStatus(models.MarketEquityIN, now),
				models.MarketEquityUS: utils.MarketStatus(models.MarketEquityUS, now),
				models.MarketCrypto:   utils.MarketStatus(models.MarketCrypto, now),
			},
			"time_ist":   utils.FormatDateTimeIST(now),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	snap := s.resolver.GetSnapshot(r.Context(), symbol)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	q := r.URL.Query()
	period := models.Period(strings.ToLower(strings.TrimSpace(q.Get("period"))))
	if period == "" {
		period = models.Period1D
	}
	interval := strings.TrimSpace(q.Get("interval"))

	chart := s.resolver.GetChart(r.Context(), symbol, period, interval)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: chart})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	switch {
	case len(symbols) == 0:
		writeError(w, http.StatusBadRequest, "symbols is required, e.g. ?symbols=TCS.NS,INFY.NS")
		return
	case len(symbols) > MaxCompareSymbols:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("at most %d symbols can be compared, got %d", MaxCompareSymbols, len(symbols)))
		return
	}

	snaps := s.resolver.CompareSnapshots(r.Context(), symbols)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    CompareResponse{Symbols: symbols, Snapshots: snaps},
	})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if s.watcher == nil {
		writeError(w, http.StatusNotFound, "watchlist refresher is not running")
		return
	}
	schedule := watch.DefaultSchedule
	if s.cfg != nil && s.cfg.Watch.Schedule != "" {
		schedule = s.cfg.Watch.Schedule
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    WatchlistResponse{Symbols: s.watcher.Symbols(), Schedule: schedule},
	})
}

// ============================================================
// Helpers
// ============================================================

// symbolParam returns the unescaped {symbol} path segment so index tickers
// such as %5ENSEI arrive as ^NSEI.
func symbolParam(r *http.Request) string {
	raw := chi.URLParam(r, "symbol")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return strings.TrimSpace(raw)
}

// splitSymbols parses a comma-separated symbol list, dropping blanks.
// Repeats are kept so the response has one entry per requested symbol.
func splitSymbols(param string) []string {
	var symbols []string
	for _, s := range strings.Split(param, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
