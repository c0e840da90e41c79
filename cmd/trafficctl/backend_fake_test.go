package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/event-traffic-controller/internal/adapter/backend"
	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/event-traffic-controller/internal/session"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the traffic backend API with fixed data. The chat
// endpoint only reports a date once the user has mentioned it.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []domain.ChatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		params := domain.ExtractedParameters{EventName: domain.Ref("Concert"), VIPNames: []string{}}
		missing := []string{"date"}
		for _, m := range body.Messages {
			if m.Role == domain.RoleUser && strings.Contains(m.Content, "2024-09-01") {
				params.Date = domain.Ref("2024-09-01")
				missing = []string{}
			}
		}
		writeTestJSON(t, w, http.StatusOK, domain.ChatReply{
			Reply:           "Noted.",
			ExtractedParams: params,
			ReadyToSimulate: params.Date != nil,
			MissingInfo:     missing,
		})
	})

	mux.HandleFunc("POST /api/simulate-day", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusOK, domain.OverlayDataset{
			Hours: []string{"18:00", "19:00", "20:00"},
			ByStreet: map[string]map[string]domain.Color{
				"19:00": {"Via Sparano": domain.ColorCritical},
			},
			ByQuartiere: map[string]map[string]domain.Color{
				"19:00": {"MURAT": domain.ColorElevated},
			},
		})
	})

	mux.HandleFunc("GET /api/baseline", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "2024-09-01" {
			writeTestJSON(t, w, http.StatusNotFound, map[string]string{"detail": "no baseline"})
			return
		}
		writeTestJSON(t, w, http.StatusOK, domain.OverlayDataset{
			Hours:    []string{"18:00", "19:00"},
			ByStreet: map[string]map[string]domain.Color{"19:00": {"Via Sparano": domain.ColorElevated}},
		})
	})

	mux.HandleFunc("GET /api/map", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusOK, domain.FeatureCollection{
			Type: "FeatureCollection",
			Features: []domain.Feature{
				{Type: "Feature", Properties: map[string]any{"denominazi": "Via Sparano", "quartiere_": "MURAT"}},
				{Type: "Feature", Properties: map[string]any{"denominazi": "Via Calefati", "quartiere_": "Murat"}},
				{Type: "Feature", Properties: map[string]any{"denominazi": "Lungomare", "quartier_1": "JAPIGIA"}},
			},
		})
	})

	mux.HandleFunc("GET /api/hello", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(t, w, http.StatusOK, map[string]string{"message": "hello"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

type testDeps struct {
	client  *backend.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	srv := fakeBackend(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	return testDeps{
		client:  backend.NewClient(srv.URL, 5*time.Second, metrics, logger),
		logger:  logger,
		metrics: metrics,
	}
}

func (d testDeps) controller() *session.Controller {
	return session.NewController(session.Gateways{
		Extraction: d.client,
		Simulation: d.client,
		Baselines:  backend.NewCachedBaselines(d.client, 4, d.metrics),
	}, nil, d.logger, d.metrics)
}
