package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
)

// SimulationState is a read-only snapshot of a SimulationSession.
type SimulationState struct {
	Primary             *domain.OverlayDataset
	Baseline            *domain.OverlayDataset
	CompareWithBaseline bool
	SelectedHourIndex   int
	SimulatedDate       string
	Loading             bool
	Error               string
}

// SimulationSession owns the overlay results of one session and the baseline
// comparison toggle.
type SimulationSession struct {
	simulator domain.SimulationGateway
	baselines domain.BaselineSource
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu              sync.Mutex
	primary         *domain.OverlayDataset
	baseline        *domain.OverlayDataset
	baselineDate    string
	compare         bool
	hour            int
	simulatedDate   string
	loading         bool
	baselineLoading bool
	errMsg          string

	// generation changes on every successful run so late baseline responses
	// for an older result can be recognized.
	generation uint64
}

// NewSimulationSession creates an empty simulation session.
func NewSimulationSession(simulator domain.SimulationGateway, baselines domain.BaselineSource, logger *slog.Logger, metrics *observability.Metrics) *SimulationSession {
	return &SimulationSession{
		simulator: simulator,
		baselines: baselines,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run simulates the event described by params.
//
// It fails fast with domain.ErrInsufficientParameters, without a network
// call, when the readiness gate does not hold. A successful run replaces the
// primary overlay and drops any baseline comparison; a failed run clears the
// primary overlay. Either way the error message is kept for display.
func (s *SimulationSession) Run(ctx context.Context, params domain.ExtractedParameters) (*domain.OverlayDataset, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrSimulationBusy
	}
	if missing := params.MissingRequired(); len(missing) > 0 {
		err := fmt.Errorf("%w: missing %s; continue the conversation", domain.ErrInsufficientParameters, strings.Join(missing, ", "))
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.metrics.SimulationRuns.WithLabelValues("rejected").Inc()
		return nil, err
	}
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	req := domain.BuildSimulationRequest(params)
	overlay, err := s.simulator.Simulate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.primary = nil
		s.errMsg = err.Error()
		s.hour = s.activeLocked().ClampHour(s.hour)
		s.metrics.SimulationRuns.WithLabelValues("error").Inc()
		s.logger.Warn("simulation failed", "error", err, "date", req.Date)
		return nil, fmt.Errorf("simulate: %w", err)
	}

	s.primary = overlay
	s.baseline = nil
	s.baselineDate = ""
	s.compare = false
	s.simulatedDate = req.Date
	s.hour = 0
	s.generation++
	s.metrics.SimulationRuns.WithLabelValues("success").Inc()
	s.logger.Info("simulation completed",
		"event_name", req.EventName,
		"date", req.Date,
		"hours", len(overlay.Hours),
	)
	return overlay, nil
}

// ToggleBaseline flips the comparison against the no-event baseline.
//
// The date is the last simulated date, else the one fallbackDate returns
// (usually the date extracted from the conversation); with neither it is a
// no-op returning ErrNoDate. fallbackDate may be nil. Turning the comparison
// on fetches the baseline once per date; if that fetch fails the toggle is
// aborted and nothing else changes. A response is discarded with
// ErrStaleResponse when the session's date changed while it was in flight.
func (s *SimulationSession) ToggleBaseline(ctx context.Context, fallbackDate func() string) error {
	fallback := func() string {
		if fallbackDate == nil {
			return ""
		}
		return fallbackDate()
	}

	s.mu.Lock()
	date := s.simulatedDate
	if date == "" {
		date = fallback()
	}
	if date == "" {
		s.mu.Unlock()
		return ErrNoDate
	}
	if s.compare || (s.baseline != nil && s.baselineDate == date) {
		s.flipLocked()
		s.mu.Unlock()
		return nil
	}
	if s.baselineLoading {
		s.mu.Unlock()
		return ErrBaselineBusy
	}
	s.baselineLoading = true
	gen, simDate := s.generation, s.simulatedDate
	s.mu.Unlock()

	overlay, err := s.baselines.Baseline(ctx, date)
	// Read outside s.mu: the provider may take other locks.
	currentFallback := fallback()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselineLoading = false

	if err != nil {
		s.metrics.BaselineToggles.WithLabelValues("aborted").Inc()
		s.logger.Warn("baseline fetch failed, comparison unchanged", "error", err, "date", date)
		return fmt.Errorf("baseline: %w", err)
	}
	stale := gen != s.generation || simDate != s.simulatedDate
	if s.simulatedDate == "" && currentFallback != date {
		stale = true
	}
	if stale {
		s.metrics.BaselineToggles.WithLabelValues("stale").Inc()
		s.logger.Debug("discarding stale baseline", "date", date)
		return ErrStaleResponse
	}
	if s.compare {
		// Turned on through a cached path while the fetch was running.
		return nil
	}

	s.baseline = overlay
	s.baselineDate = date
	s.flipLocked()
	return nil
}

func (s *SimulationSession) flipLocked() {
	s.compare = !s.compare && s.baseline != nil
	s.hour = s.activeLocked().ClampHour(s.hour)
	outcome := "off"
	if s.compare {
		outcome = "on"
	}
	s.metrics.BaselineToggles.WithLabelValues(outcome).Inc()
}

// ActiveOverlay is the dataset renderers read: the baseline while comparing,
// else the primary result. It is nil before any successful simulation.
func (s *SimulationSession) ActiveOverlay() *domain.OverlayDataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *SimulationSession) activeLocked() *domain.OverlayDataset {
	if s.compare && s.baseline != nil {
		return s.baseline
	}
	return s.primary
}

// View returns the active overlay and selected hour under one lock.
func (s *SimulationSession) View() (*domain.OverlayDataset, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(), s.hour
}

// SelectHour moves the hour slider, clamping to the active overlay. It
// returns the index actually selected.
func (s *SimulationSession) SelectHour(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hour = s.activeLocked().ClampHour(i)
	return s.hour
}

// SelectedHour returns the selected index and its time label ("" without data).
func (s *SimulationSession) SelectedHour() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.activeLocked()
	return s.hour, active.HourLabel(s.hour)
}

// Snapshot returns the current state.
func (s *SimulationSession) Snapshot() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SimulationState{
		Primary:             s.primary,
		Baseline:            s.baseline,
		CompareWithBaseline: s.compare,
		SelectedHourIndex:   s.hour,
		SimulatedDate:       s.simulatedDate,
		Loading:             s.loading,
		Error:               s.errMsg,
	}
}

// HasSimulation reports whether a primary result is available.
func (s *SimulationSession) HasSimulation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primary != nil
}

// IsRejection reports whether err is a local rejection rather than a backend failure.
func IsRejection(err error) bool {
	return errors.Is(err, domain.ErrInsufficientParameters) ||
		errors.Is(err, ErrSimulationBusy) ||
		errors.Is(err, ErrBaselineBusy) ||
		errors.Is(err, ErrNoDate)
}
