package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/csnsor/bs-webpanel/internal/banlog"
	"github.com/csnsor/bs-webpanel/internal/enrich"
	"github.com/csnsor/bs-webpanel/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// State is the refresh scheduler state.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateRendered
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateRendered:
		return "rendered"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// countdownPlaceholder is shown before the first fetch has been scheduled.
const countdownPlaceholder = "--"

// Enricher is the batch enrichment seam.
type Enricher interface {
	Enrich(ctx context.Context, raw []banlog.Record) []enrich.Record
}

// Snapshot is a point-in-time copy of the session's display state.
type Snapshot struct {
	Records       []enrich.Record
	State         State
	Error         string
	Countdown     string
	LastUpdated   time.Time
	NextRefreshAt time.Time
}

// SessionConfig holds the session's cadence parameters.
type SessionConfig struct {
	RefreshInterval time.Duration
	CountdownTick   time.Duration
}

// Session owns the repeating fetch→enrich→render cycle, the countdown
// display, and the current enriched record set. All mutable state lives
// behind one mutex; mutation happens only in short non-blocking critical
// sections while fetches and enrichment run outside the lock.
type Session struct {
	cfg      SessionConfig
	source   banlog.Source
	enricher Enricher
	log      zerolog.Logger

	refreshCh chan struct{}

	mu            sync.RWMutex
	timer         *time.Timer
	state         State
	records       []enrich.Record
	lastError     string
	lastUpdated   time.Time
	nextRefreshAt time.Time
	countdown     string
	seq           uint64 // last issued fetch sequence number
}

// NewSession constructs a Session in the idle state.
func NewSession(cfg SessionConfig, source banlog.Source, enricher Enricher, log zerolog.Logger) *Session {
	return &Session{
		cfg:       cfg,
		source:    source,
		enricher:  enricher,
		log:       log,
		refreshCh: make(chan struct{}, 1),
		state:     StateIdle,
		countdown: countdownPlaceholder,
	}
}

// Run drives the periodic fetch loop and the countdown ticker until ctx is
// cancelled. The first fetch starts immediately.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.scheduleLoop(gctx) })
	g.Go(func() error { return s.countdownLoop(gctx) })
	return g.Wait()
}

// Refresh requests a manual refresh. It never blocks; rapid repeated
// requests collapse into one.
func (s *Session) Refresh() {
	metrics.ManualRefreshes.Inc()
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current display state. The record slice is
// shared but never mutated after publication: each successful cycle replaces
// it wholesale.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records:       s.records,
		State:         s.state,
		Error:         s.lastError,
		Countdown:     s.countdown,
		LastUpdated:   s.lastUpdated,
		NextRefreshAt: s.nextRefreshAt,
	}
}

// scheduleLoop owns the refresh timer. Manual refreshes re-arm it in place,
// so there is never more than one pending periodic tick.
func (s *Session) scheduleLoop(ctx context.Context) error {
	s.mu.Lock()
	s.timer = time.NewTimer(0) // immediate first fetch
	s.mu.Unlock()
	defer s.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.timer.C:
			s.rearm(s.cfg.RefreshInterval)
			s.beginFetch(ctx, "timer")
		case <-s.refreshCh:
			// Manual trigger: re-arm immediately so the stale tick is
			// cancelled, then fetch at once.
			s.rearm(s.cfg.RefreshInterval)
			s.beginFetch(ctx, "manual")
		}
	}
}

// rearm resets the refresh timer and the countdown target. Timer.Reset
// discards any pending tick, so re-arming never stacks timers.
func (s *Session) rearm(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rearmLocked(d)
}

func (s *Session) rearmLocked(d time.Duration) {
	s.nextRefreshAt = time.Now().Add(d)
	if s.timer != nil {
		s.timer.Reset(d)
	}
}

// beginFetch issues a fetch tagged with the next sequence number. In-flight
// fetches are never cancelled; the sequence number decides which completion
// is applied (latest-issued wins, stale results are discarded).
func (s *Session) beginFetch(ctx context.Context, trigger string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state = StateFetching
	s.mu.Unlock()

	s.log.Debug().Uint64("seq", seq).Str("trigger", trigger).Msg("fetch cycle started")
	go s.runFetch(ctx, seq, trigger)
}

func (s *Session) runFetch(ctx context.Context, seq uint64, trigger string) {
	start := time.Now()
	raw, err := s.source.Fetch(ctx)
	var enriched []enrich.Record
	if err == nil {
		enriched = s.enricher.Enrich(ctx, raw)
	}
	s.apply(seq, trigger, enriched, err, time.Since(start))
}

// apply publishes a completed fetch. A completion whose sequence number is
// no longer the latest issued is discarded wholesale.
func (s *Session) apply(seq uint64, trigger string, records []enrich.Record, err error, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		metrics.FetchDiscarded.WithLabelValues("superseded").Inc()
		s.log.Debug().Uint64("seq", seq).Uint64("latest", s.seq).Msg("discarding superseded fetch result")
		return
	}

	if err != nil {
		s.state = StateErrored
		s.lastError = err.Error()
		// Previous records and counters stay visible alongside the error.
		metrics.FetchCycles.WithLabelValues("error", trigger).Inc()
		s.log.Warn().Err(err).Uint64("seq", seq).Msg("fetch cycle failed")
	} else {
		s.state = StateRendered
		s.records = records
		s.lastError = ""
		s.lastUpdated = time.Now()
		metrics.FetchCycles.WithLabelValues("success", trigger).Inc()
		metrics.FetchDuration.Observe(elapsed.Seconds())
		active := 0
		for _, r := range records {
			if r.Active {
				active++
			}
		}
		metrics.RenderedRecords.WithLabelValues("active").Set(float64(active))
		metrics.RenderedRecords.WithLabelValues("total").Set(float64(len(records)))
		s.log.Info().Int("records", len(records)).Int("active", active).
			Dur("elapsed", elapsed).Msg("fetch cycle complete")
	}

	// Either way the next cycle is scheduled a full interval out; errors
	// never stop the scheduler.
	s.rearmLocked(s.cfg.RefreshInterval)
}

// countdownLoop recomputes the countdown display from the stored deadline on
// a fast tick, independent of the fetch cadence.
func (s *Session) countdownLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CountdownTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			s.countdown = formatCountdown(s.nextRefreshAt, time.Now())
			s.mu.Unlock()
		}
	}
}

// formatCountdown renders the remaining time until deadline: a placeholder
// when nothing is scheduled, "now" once the deadline has passed.
func formatCountdown(deadline, now time.Time) string {
	if deadline.IsZero() {
		return countdownPlaceholder
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return "now"
	}
	secs := int(remaining.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs) + "s"
}
