package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/overlay"
	"github.com/couchcryptid/event-traffic-controller/internal/session"
)

const replHelp = `Commands:
  /simulate        run the simulation with the extracted parameters
  /baseline        toggle the comparison with the no-event baseline
  /hour N|HH:MM    select an hour by index or label
  /map             summarize road styles for the selected hour
  /params          show the extracted parameters
  /status          show the session state as JSON
  /quit            leave the session
Anything else is sent to the assistant.`

// maxListedStreets bounds the critical streets printed by /map.
const maxListedStreets = 10

type repl struct {
	ctrl  *session.Controller
	geo   session.Geometry
	out   io.Writer
	shown int
}

func newREPL(ctrl *session.Controller, geo session.Geometry, out io.Writer) *repl {
	return &repl{ctrl: ctrl, geo: geo, out: out}
}

func (r *repl) run(ctx context.Context, in io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.printNewTurns()
	if r.geo.Offline {
		r.printf("map offline: %s\n", r.geo.Reason)
	}

	lines := readLines(ctx, in)
	for {
		r.printf("> ")
		select {
		case <-ctx.Done():
			r.printf("\n")
			return
		case line, ok := <-lines:
			if !ok {
				r.printf("\n")
				return
			}
			if !r.handle(ctx, line) {
				return
			}
		}
	}
}

// handle processes one input line and reports whether to keep going.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "/") {
		r.submit(ctx, line)
		return true
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return false
	case "/help":
		r.printf("%s\n", replHelp)
	case "/simulate":
		r.simulate(ctx)
	case "/baseline":
		r.toggleBaseline(ctx)
	case "/hour":
		r.selectHour(fields[1:])
	case "/map":
		r.mapSummary()
	case "/params":
		r.params()
	case "/status":
		r.status()
	default:
		r.printf("unknown command %q, try /help\n", fields[0])
	}
	return true
}

func (r *repl) submit(ctx context.Context, text string) {
	if err := r.ctrl.Submit(ctx, text); err != nil {
		r.printf("%v\n", err)
		return
	}
	r.printNewTurns()

	chat := r.ctrl.Chat()
	if chat.ReadyToSimulate() {
		r.printf("(ready to simulate: /simulate)\n")
		return
	}
	missing := chat.MissingInfo()
	if len(missing) == 0 {
		missing = chat.Parameters().MissingRequired()
	}
	if len(missing) > 0 {
		r.printf("(still missing: %s)\n", strings.Join(missing, ", "))
	}
}

func (r *repl) simulate(ctx context.Context) {
	if err := r.ctrl.Simulate(ctx); err != nil {
		if session.IsRejection(err) {
			r.printf("cannot simulate: %v\n", err)
			return
		}
		r.printf("simulation failed: %v\n", err)
		return
	}
	active := r.ctrl.Simulation().ActiveOverlay()
	r.printf("simulated %d hours (%s to %s)\n", len(active.Hours), active.Hours[0], active.Hours[len(active.Hours)-1])
	r.printHour()
}

func (r *repl) toggleBaseline(ctx context.Context) {
	err := r.ctrl.ToggleBaseline(ctx)
	switch {
	case errors.Is(err, session.ErrNoDate):
		r.printf("no date yet: mention one in the conversation first\n")
		return
	case errors.Is(err, session.ErrStaleResponse):
		r.printf("baseline arrived after a new simulation and was discarded\n")
		return
	case err != nil:
		r.printf("baseline unavailable: %v\n", err)
		return
	}

	if r.ctrl.Simulation().Snapshot().CompareWithBaseline {
		r.printf("showing the no-event baseline\n")
	} else {
		r.printf("showing the event simulation\n")
	}
	r.printHour()
}

func (r *repl) selectHour(args []string) {
	active := r.ctrl.Simulation().ActiveOverlay()
	if active == nil {
		r.printf("nothing simulated yet\n")
		return
	}
	if len(args) != 1 {
		r.printf("usage: /hour N|HH:MM\n")
		return
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil {
		idx = -1
		for i, h := range active.Hours {
			if h == args[0] {
				idx = i
				break
			}
		}
		if idx < 0 {
			r.printf("unknown hour %q; available: %s\n", args[0], strings.Join(active.Hours, " "))
			return
		}
	}
	r.ctrl.SelectHour(idx)
	r.printHour()
}

func (r *repl) printHour() {
	sim := r.ctrl.Simulation()
	active := sim.ActiveOverlay()
	if active == nil {
		return
	}
	idx, label := sim.SelectedHour()
	counts := active.TierCounts(label)

	which := "event"
	if sim.Snapshot().CompareWithBaseline {
		which = "baseline"
	}
	r.printf("%s [%d/%d] %s: critical %d, elevated %d, normal %d\n",
		label, idx+1, len(active.Hours), which,
		counts[domain.ColorCritical], counts[domain.ColorElevated], counts[domain.ColorNormal])
}

func (r *repl) mapSummary() {
	if r.geo.Offline {
		r.printf("map offline: %s\n", r.geo.Reason)
		return
	}

	styles := r.ctrl.Styles(r.geo.Features)
	byTier := map[overlay.Tier]int{}
	bySource := map[overlay.Source]int{}
	var critical []string
	for i, st := range styles {
		byTier[st.Tier]++
		bySource[st.Source]++
		if st.Tier == overlay.TierCritical {
			if name := r.geo.Features[i].Property(overlay.DefaultKeys.Street); name != "" {
				critical = append(critical, name)
			}
		}
	}

	label := r.ctrl.Frame().Label()
	if label == "" {
		label = "no simulation"
	}
	r.printf("%d roads at %s: critical %d, elevated %d, normal %d, no data %d\n",
		len(styles), label,
		byTier[overlay.TierCritical], byTier[overlay.TierElevated], byTier[overlay.TierNormal], byTier[overlay.TierNoData])
	r.printf("matched by street %d, by district %d, default %d\n",
		bySource[overlay.SourceStreet], bySource[overlay.SourceDistrict], bySource[overlay.SourceDefault])

	if len(critical) == 0 {
		return
	}
	slices.Sort(critical)
	critical = slices.Compact(critical)
	if len(critical) > maxListedStreets {
		critical = append(critical[:maxListedStreets], "...")
	}
	r.printf("critical: %s\n", strings.Join(critical, ", "))
}

func (r *repl) params() {
	p := r.ctrl.Chat().Parameters()
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", k, v)
	}
	row("event", domain.StringValue(p.EventName))
	row("venue", domain.StringValue(p.Venue))
	row("date", domain.StringValue(p.Date))
	row("end time", domain.StringValue(p.EndTime))
	row("capacity", formatRef(p.Capacity, strconv.Itoa))
	row("vips", strings.Join(p.VIPNames, ", "))
	row("vip analysis", domain.StringValue(p.VIPAnalysis))
	row("multiplier", formatRef(p.EstimatedMultiplier, func(f float64) string {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}))
	row("confidence", domain.StringValue(p.Confidence))
	row("ready", strconv.FormatBool(p.ReadyToSimulate()))
	_ = w.Flush()
}

func (r *repl) status() {
	data, err := json.MarshalIndent(r.ctrl.Status(), "", "  ")
	if err != nil {
		r.printf("status: %v\n", err)
		return
	}
	r.printf("%s\n", data)
}

// printNewTurns prints assistant turns added since the last call. User turns
// are already on screen.
func (r *repl) printNewTurns() {
	turns := r.ctrl.Chat().Transcript()
	for _, t := range turns[r.shown:] {
		if t.Role == domain.RoleAssistant {
			r.printf("assistant: %s\n", t.Content)
		}
	}
	r.shown = len(turns)
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func formatRef[T any](v *T, format func(T) string) string {
	if v == nil {
		return ""
	}
	return format(*v)
}
