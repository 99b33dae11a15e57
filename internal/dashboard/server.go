package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/csnsor/bs-webpanel/internal/config"
	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Server wires the session to its HTTP surfaces: the dashboard itself, the
// health endpoints, and the optional Prometheus listener.
type Server struct {
	cfg     *config.Config
	session *Session
	log     zerolog.Logger
}

func NewServer(cfg *config.Config, session *Session, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, session: session, log: log}
}

// Run starts the session loop and all HTTP listeners, blocking until ctx is
// cancelled or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.session.Run(gctx)
	})
	g.Go(func() error {
		return s.serveDashboard(gctx)
	})
	g.Go(func() error {
		return s.serveHealth(gctx)
	})
	if s.cfg.MetricsEnabled {
		g.Go(func() error {
			return s.serveMetrics(gctx)
		})
	}

	return g.Wait()
}

// Handler builds the dashboard mux. Split out so tests can drive it through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query().Get("q")
	if query != "" {
		metrics.SearchQueries.Inc()
	}

	snap := s.session.Snapshot()
	view := BuildPageView(Filter(snap.Records, query), snap, query, time.Now())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderPage(w, view); err != nil {
		s.log.Error().Err(err).Msg("render failed")
	}
}

// recordsResponse is the JSON envelope for /api/records.
type recordsResponse struct {
	Records     []RecordView `json:"records"`
	ActiveCount int          `json:"activeCount"`
	TotalCount  int          `json:"totalCount"`
	State       string       `json:"state"`
	Error       string       `json:"error,omitempty"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	snap := s.session.Snapshot()
	now := time.Now()

	filtered := Filter(snap.Records, query)
	views := make([]RecordView, 0, len(filtered))
	active := 0
	for _, rec := range filtered {
		v := BuildRecordView(rec, now)
		if v.Active {
			active++
		}
		views = append(views, v)
	}

	resp := recordsResponse{
		Records:     views,
		ActiveCount: active,
		TotalCount:  len(views),
		State:       snap.State.String(),
		Error:       snap.Error,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("encode records failed")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.session.Refresh()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) serveDashboard(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("dashboard server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dashboard server: %w", err)
	}
	return nil
}

// serveHealth runs the liveness/readiness endpoints. Readiness requires the
// first fetch cycle to have completed, successfully or not.
func (s *Server) serveHealth(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		snap := s.session.Snapshot()
		if snap.LastUpdated.IsZero() && snap.Error == "" {
			http.Error(w, "not ready: no fetch cycle completed", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{
		Addr:    s.cfg.HealthAddr,
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	s.log.Info().Str("addr", s.cfg.HealthAddr).Msg("health server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (s *Server) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    s.cfg.MetricsAddr,
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	s.log.Info().Str("addr", s.cfg.MetricsAddr).Msg("Prometheus metrics server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
