package session

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/event-traffic-controller/internal/overlay"
	"github.com/google/uuid"
)

// Gateways bundles the backend collaborators of a Controller. Publisher is optional.
type Gateways struct {
	Extraction domain.ExtractionGateway
	Simulation domain.SimulationGateway
	Baselines  domain.BaselineSource
	Publisher  domain.SimulationPublisher
}

// Controller is the single owner of one user session: it routes user commands
// to the chat and simulation sessions and exposes what renderers need.
type Controller struct {
	id        string
	chat      *ChatSession
	sim       *SimulationSession
	resolver  *overlay.Resolver
	publisher domain.SimulationPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewController creates a controller with a fresh session ID.
func NewController(gw Gateways, resolver *overlay.Resolver, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	id := uuid.NewString()
	logger = logger.With("session_id", id)
	if resolver == nil {
		resolver = overlay.NewResolver(overlay.DefaultKeys)
	}
	return &Controller{
		id:        id,
		chat:      NewChatSession(gw.Extraction, logger, metrics),
		sim:       NewSimulationSession(gw.Simulation, gw.Baselines, logger, metrics),
		resolver:  resolver,
		publisher: gw.Publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// ID identifies the session in logs and published records.
func (c *Controller) ID() string { return c.id }

// Chat exposes the conversation state.
func (c *Controller) Chat() *ChatSession { return c.chat }

// Simulation exposes the overlay state.
func (c *Controller) Simulation() *SimulationSession { return c.sim }

// Submit forwards a user message to the chat session.
func (c *Controller) Submit(ctx context.Context, text string) error {
	return c.chat.Submit(ctx, text)
}

// Simulate runs a simulation with the latest extracted parameters and, when a
// publisher is configured, publishes a record of the result. Publishing
// failures are logged and do not fail the run.
func (c *Controller) Simulate(ctx context.Context) error {
	return c.SimulateParams(ctx, c.chat.Parameters())
}

// SimulateParams is Simulate with explicit parameters, bypassing the conversation.
func (c *Controller) SimulateParams(ctx context.Context, params domain.ExtractedParameters) error {
	result, err := c.sim.Run(ctx, params)
	if err != nil {
		return err
	}
	if c.publisher == nil {
		return nil
	}

	rec := domain.NewSimulationRecord(c.id, domain.BuildSimulationRequest(params), result)
	if err := c.publisher.Publish(ctx, rec); err != nil {
		c.metrics.RecordsPublished.WithLabelValues("error").Inc()
		c.logger.Warn("publish simulation record failed", "error", err)
		return nil
	}
	c.metrics.RecordsPublished.WithLabelValues("success").Inc()
	return nil
}

// ToggleBaseline flips the baseline comparison, falling back to the
// conversation's date when nothing has been simulated yet.
func (c *Controller) ToggleBaseline(ctx context.Context) error {
	return c.sim.ToggleBaseline(ctx, c.chatDate)
}

func (c *Controller) chatDate() string {
	return domain.StringValue(c.chat.Parameters().Date)
}

// SelectHour moves the hour slider and returns the clamped index.
func (c *Controller) SelectHour(i int) int {
	return c.sim.SelectHour(i)
}

// Frame binds the resolver to the active overlay and selected hour for one redraw.
func (c *Controller) Frame() overlay.Frame {
	active, idx := c.sim.View()
	return c.resolver.Frame(active, idx)
}

// Styles resolves every feature for the current frame, in input order.
func (c *Controller) Styles(features []domain.Feature) []overlay.Style {
	fr := c.Frame()
	out := make([]overlay.Style, len(features))
	for i, f := range features {
		out[i] = fr.Style(f)
	}
	return out
}

// Status is a JSON view of the session for the ops server.
type Status struct {
	SessionID           string                     `json:"session_id"`
	Turns               int                        `json:"turns"`
	Parameters          domain.ExtractedParameters `json:"parameters"`
	ReadyToSimulate     bool                       `json:"ready_to_simulate"`
	MissingInfo         []string                   `json:"missing_info"`
	Simulated           bool                       `json:"simulated"`
	SimulatedDate       string                     `json:"simulated_date,omitempty"`
	CompareWithBaseline bool                       `json:"compare_with_baseline"`
	HourIndex           int                        `json:"hour_index"`
	HourLabel           string                     `json:"hour_label,omitempty"`
	Error               string                     `json:"error,omitempty"`
}

// Status summarizes the session.
func (c *Controller) Status() Status {
	params := c.chat.Parameters()
	st := c.sim.Snapshot()
	_, label := c.sim.SelectedHour()
	missing := c.chat.MissingInfo()
	if missing == nil {
		missing = []string{}
	}
	return Status{
		SessionID:           c.id,
		Turns:               len(c.chat.Transcript()),
		Parameters:          params,
		ReadyToSimulate:     params.ReadyToSimulate(),
		MissingInfo:         missing,
		Simulated:           st.Primary != nil,
		SimulatedDate:       st.SimulatedDate,
		CompareWithBaseline: st.CompareWithBaseline,
		HourIndex:           st.SelectedHourIndex,
		HourLabel:           label,
		Error:               st.Error,
	}
}
