package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/couchcryptid/event-traffic-controller/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runREPL(t *testing.T, geo session.Geometry, input ...string) string {
	t.Helper()
	d := newTestDeps(t)
	ctrl := d.controller()
	if !geo.Offline && geo.Features == nil {
		geo = session.LoadGeometry(context.Background(), d.client, d.logger, d.metrics)
		require.False(t, geo.Offline)
	}

	var out bytes.Buffer
	newREPL(ctrl, geo, &out).run(context.Background(), strings.NewReader(strings.Join(input, "\n")+"\n"))
	return out.String()
}

func TestREPL_ConversationToMap(t *testing.T) {
	out := runREPL(t, session.Geometry{},
		"Concert at the stadium",
		"/simulate",
		"Concert at the stadium, date 2024-09-01",
		"/simulate",
		"/hour 19:00",
		"/map",
		"/quit",
		"never read",
	)

	assert.Contains(t, out, "assistant: "+session.WelcomeMessage)
	assert.Contains(t, out, "assistant: Noted.")
	assert.Contains(t, out, "(still missing: date)")
	assert.Contains(t, out, "cannot simulate: insufficient parameters")
	assert.Contains(t, out, "(ready to simulate: /simulate)")
	assert.Contains(t, out, "simulated 3 hours (18:00 to 20:00)")
	assert.Contains(t, out, "18:00 [1/3] event: critical 0, elevated 0, normal 0")
	assert.Contains(t, out, "19:00 [2/3] event: critical 1, elevated 0, normal 0")
	assert.Contains(t, out, "3 roads at 19:00: critical 1, elevated 1, normal 1, no data 0")
	assert.Contains(t, out, "matched by street 1, by district 1, default 1")
	assert.Contains(t, out, "critical: Via Sparano")
}

func TestREPL_BaselineComparison(t *testing.T) {
	out := runREPL(t, session.Geometry{},
		"/baseline",
		"Concert on 2024-09-01",
		"/simulate",
		"/hour 2",
		"/baseline",
		"/hour 7",
		"/baseline",
	)

	assert.Contains(t, out, "no date yet")
	assert.Contains(t, out, "showing the no-event baseline")
	assert.Contains(t, out, "19:00 [2/2] baseline: critical 0, elevated 1, normal 0")
	assert.Contains(t, out, "showing the event simulation")
}

func TestREPL_MapBeforeSimulationIsNoData(t *testing.T) {
	out := runREPL(t, session.Geometry{}, "/map")

	assert.Contains(t, out, "3 roads at no simulation: critical 0, elevated 0, normal 0, no data 3")
}

func TestREPL_OfflineMap(t *testing.T) {
	out := runREPL(t, session.Geometry{Offline: true, Reason: "map geometry is empty"}, "/map")

	assert.Contains(t, out, "map offline: map geometry is empty")
}

func TestREPL_ParamsAndCommands(t *testing.T) {
	out := runREPL(t, session.Geometry{},
		"Concert on 2024-09-01",
		"/params",
		"/hour 1",
		"/status",
		"/bogus",
		"/help",
	)

	assert.Contains(t, out, "2024-09-01")
	assert.Contains(t, out, "nothing simulated yet")
	assert.Contains(t, out, `"ready_to_simulate": true`)
	assert.Contains(t, out, `unknown command "/bogus"`)
	assert.Contains(t, out, "/baseline")
}

func TestREPL_StopsOnCancelledContext(t *testing.T) {
	d := newTestDeps(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An idle terminal: reads block until the pipe is closed.
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	var out bytes.Buffer
	newREPL(d.controller(), session.Geometry{Offline: true}, &out).run(ctx, pr)

	assert.Contains(t, out.String(), "assistant: "+session.WelcomeMessage)
}
