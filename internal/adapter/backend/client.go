package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Endpoint labels used for metrics and error messages.
const (
	endpointChat     = "chat"
	endpointSimulate = "simulate"
	endpointBaseline = "baseline"
	endpointMap      = "map"
	endpointHello    = "hello"
)

// maxErrorBody bounds how much of a failed response is read for the detail message.
const maxErrorBody = 64 << 10

// Client implements the extraction, simulation, baseline and geometry
// gateways against the traffic simulation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient creates a backend client. Every request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
		clock:   clockwork.NewRealClock(),
	}
}

// Extract sends the conversation history and returns the service's reply and
// full parameter snapshot.
func (c *Client) Extract(ctx context.Context, history []domain.ChatMessage) (domain.ChatReply, error) {
	if history == nil {
		history = []domain.ChatMessage{}
	}
	body := struct {
		Messages []domain.ChatMessage `json:"messages"`
	}{Messages: history}

	var reply domain.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &reply, endpointChat); err != nil {
		return domain.ChatReply{}, err
	}
	return reply, nil
}

// Simulate runs an event simulation and returns its overlay.
func (c *Client) Simulate(ctx context.Context, req domain.SimulationRequest) (*domain.OverlayDataset, error) {
	var overlay domain.OverlayDataset
	if err := c.do(ctx, http.MethodPost, "/api/simulate-day", req, &overlay, endpointSimulate); err != nil {
		return nil, err
	}
	if err := overlay.Validate(); err != nil {
		return nil, fmt.Errorf("simulate response: %w", err)
	}
	return &overlay, nil
}

// Baseline fetches the no-event overlay for a date.
func (c *Client) Baseline(ctx context.Context, date string) (*domain.OverlayDataset, error) {
	path := "/api/baseline?" + url.Values{"date": {date}}.Encode()

	var overlay domain.OverlayDataset
	if err := c.do(ctx, http.MethodGet, path, nil, &overlay, endpointBaseline); err != nil {
		return nil, err
	}
	if err := overlay.Validate(); err != nil {
		return nil, fmt.Errorf("baseline response: %w", err)
	}
	return &overlay, nil
}

// Geometry fetches the road network feature collection.
func (c *Client) Geometry(ctx context.Context) (domain.FeatureCollection, error) {
	var fc domain.FeatureCollection
	if err := c.do(ctx, http.MethodGet, "/api/map", nil, &fc, endpointMap); err != nil {
		return domain.FeatureCollection{}, err
	}
	return fc, nil
}

// CheckReadiness probes the backend's hello endpoint.
func (c *Client) CheckReadiness(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/hello", nil, nil, endpointHello)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, endpoint string) (err error) {
	start := c.clock.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.GatewayRequests.WithLabelValues(endpoint, outcome).Inc()
		c.metrics.GatewayDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(endpoint, resp)
		c.logger.Debug("backend returned error status",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"detail", apiErr.Detail,
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
