package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
)

// WelcomeMessage opens every transcript. It is never sent to the extraction service.
const WelcomeMessage = "Hi! I'm your traffic simulation assistant for Bari. " +
	"Describe the event you want to simulate: name, venue, date, end time, " +
	"capacity and VIP guests. I'll analyse its impact on city mobility."

// ChatSession holds the conversation and the latest extracted parameters.
type ChatSession struct {
	gateway domain.ExtractionGateway
	logger  *slog.Logger
	metrics *observability.Metrics

	mu            sync.Mutex
	turns         []domain.Turn
	params        domain.ExtractedParameters
	reportedReady bool
	missingInfo   []string
	loading       bool
}

// NewChatSession creates a session seeded with the welcome turn.
func NewChatSession(gateway domain.ExtractionGateway, logger *slog.Logger, metrics *observability.Metrics) *ChatSession {
	welcome := domain.NewTurn(domain.RoleAssistant, WelcomeMessage)
	welcome.Synthetic = true
	return &ChatSession{
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
		turns:   []domain.Turn{welcome},
		params:  domain.ExtractedParameters{VIPNames: []string{}},
	}
}

// Submit sends a user message to the extraction service.
//
// Blank messages and messages sent while a previous one is in flight are
// rejected without touching the session. A failed extraction is reported as
// an assistant turn and leaves the parameters and readiness untouched; it is
// not returned as an error.
func (s *ChatSession) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrChatBusy
	}
	s.turns = append(s.turns, domain.NewTurn(domain.RoleUser, text))
	s.loading = true
	history := domain.History(s.turns)
	s.mu.Unlock()
	s.metrics.ChatTurns.WithLabelValues(string(domain.RoleUser)).Inc()

	reply, err := s.gateway.Extract(ctx, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.metrics.ChatTurns.WithLabelValues(string(domain.RoleAssistant)).Inc()

	if err != nil {
		s.logger.Warn("extraction failed", "error", err, "turns", len(s.turns))
		s.turns = append(s.turns, domain.NewTurn(domain.RoleAssistant, "Communication error: "+err.Error()))
		return nil
	}

	s.turns = append(s.turns, domain.NewTurn(domain.RoleAssistant, reply.Reply))
	s.params = reply.ExtractedParams.Clone()
	if s.params.VIPNames == nil {
		s.params.VIPNames = []string{}
	}
	s.reportedReady = reply.ReadyToSimulate
	s.missingInfo = append([]string(nil), reply.MissingInfo...)

	s.logger.Debug("parameters extracted",
		"event_name", domain.StringValue(s.params.EventName),
		"date", domain.StringValue(s.params.Date),
		"reported_ready", s.reportedReady,
		"local_ready", s.params.ReadyToSimulate(),
	)
	return nil
}

// Transcript returns a copy of the conversation, welcome turn included.
func (s *ChatSession) Transcript() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Turn(nil), s.turns...)
}

// Parameters returns a copy of the latest parameter snapshot.
func (s *ChatSession) Parameters() domain.ExtractedParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

// ReportedReady is the extraction service's own readiness hint.
func (s *ChatSession) ReportedReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportedReady
}

// ReadyToSimulate is the local gate that decides whether a simulation may run.
func (s *ChatSession) ReadyToSimulate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.ReadyToSimulate()
}

// MissingInfo returns the service's hints about what is still missing.
func (s *ChatSession) MissingInfo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.missingInfo...)
}

// Loading reports whether an extraction call is in flight.
func (s *ChatSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
