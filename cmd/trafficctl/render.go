package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/event-traffic-controller/internal/config"
	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/event-traffic-controller/internal/overlay"
	"github.com/couchcryptid/event-traffic-controller/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type renderOptions struct {
	eventName  string
	venue      string
	date       string
	endTime    string
	capacity   int
	vips       []string
	multiplier float64
	hour       int
	baseline   bool
	format     string
}

func (o renderOptions) parameters() domain.ExtractedParameters {
	p := domain.ExtractedParameters{
		EventName: domain.Ref(o.eventName),
		Date:      domain.Ref(o.date),
		VIPNames:  domain.NormalizeVIPNames(o.vips),
	}
	if p.VIPNames == nil {
		p.VIPNames = []string{}
	}
	if o.venue != "" {
		p.Venue = domain.Ref(o.venue)
	}
	if o.endTime != "" {
		p.EndTime = domain.Ref(o.endTime)
	}
	if o.capacity > 0 {
		p.Capacity = domain.Ref(o.capacity)
	}
	if o.multiplier > 0 {
		p.EstimatedMultiplier = domain.Ref(o.multiplier)
	}
	return p
}

type renderedFeature struct {
	Street   string        `json:"street,omitempty" yaml:"street,omitempty"`
	District string        `json:"district,omitempty" yaml:"district,omitempty"`
	Style    overlay.Style `json:"style" yaml:"style"`
}

type renderOutput struct {
	SessionID     string            `json:"session_id" yaml:"session_id"`
	Hour          string            `json:"hour" yaml:"hour"`
	HourIndex     int               `json:"hour_index" yaml:"hour_index"`
	Hours         []string          `json:"hours" yaml:"hours"`
	Baseline      bool              `json:"baseline" yaml:"baseline"`
	Offline       bool              `json:"offline" yaml:"offline"`
	OfflineReason string            `json:"offline_reason,omitempty" yaml:"offline_reason,omitempty"`
	TierCounts    map[string]int    `json:"tier_counts" yaml:"tier_counts"`
	Features      []renderedFeature `json:"features" yaml:"features"`
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Simulate an event and print the style of every road",
		Long: `Runs one simulation from flags, without a conversation, loads the road
network in parallel, and prints the resolved style of every road for the
selected hour. With --baseline the no-event baseline for the same date is shown
instead.`,
		Example: `  trafficctl render --event "Concert" --date 2024-09-01 --venue "Stadio San Nicola" --hour 3
  trafficctl render --event "Match" --date 2024-10-05 --vip "Mayor" --baseline --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != "json" && opts.format != "yaml" {
				return fmt.Errorf("unknown format %q: use json or yaml", opts.format)
			}

			a, err := newApp(func(cfg *config.Config) *slog.Logger {
				return observability.NewConsoleLogger(os.Stderr, cfg)
			})
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctrl := session.NewController(a.gateways(), nil, a.logger, a.metrics)
			out, err := render(ctx, ctrl, a.client, a.logger, a.metrics, opts)
			if err != nil {
				return err
			}
			return writeRender(cmd.OutOrStdout(), out, opts.format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.eventName, "event", "", "event name (required)")
	f.StringVar(&opts.date, "date", "", "event date, YYYY-MM-DD (required)")
	f.StringVar(&opts.venue, "venue", "", "venue name")
	f.StringVar(&opts.endTime, "end-time", "", "event end time, HH:MM (default 22:00)")
	f.IntVar(&opts.capacity, "capacity", 0, "expected attendance (default 1000)")
	f.StringSliceVar(&opts.vips, "vip", nil, "VIP guest, repeatable")
	f.Float64Var(&opts.multiplier, "multiplier", 0, "traffic multiplier override")
	f.IntVar(&opts.hour, "hour", 0, "hour index to render, clamped to the result")
	f.BoolVar(&opts.baseline, "baseline", false, "render the no-event baseline instead")
	f.StringVarP(&opts.format, "format", "o", "json", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// render runs the simulation and geometry load concurrently, then resolves
// every feature for the selected hour.
func render(ctx context.Context, ctrl *session.Controller, geometry domain.GeometrySource, logger *slog.Logger, metrics *observability.Metrics, opts renderOptions) (renderOutput, error) {
	var geo session.Geometry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		geo = session.LoadGeometry(gctx, geometry, logger, metrics)
		return nil
	})
	g.Go(func() error {
		return ctrl.SimulateParams(gctx, opts.parameters())
	})
	if err := g.Wait(); err != nil {
		return renderOutput{}, err
	}

	if opts.baseline {
		if err := ctrl.ToggleBaseline(ctx); err != nil {
			return renderOutput{}, fmt.Errorf("baseline: %w", err)
		}
	}
	ctrl.SelectHour(opts.hour)

	sim := ctrl.Simulation()
	idx, label := sim.SelectedHour()
	out := renderOutput{
		SessionID:     ctrl.ID(),
		Hour:          label,
		HourIndex:     idx,
		Hours:         sim.ActiveOverlay().Hours,
		Baseline:      sim.Snapshot().CompareWithBaseline,
		Offline:       geo.Offline,
		OfflineReason: geo.Reason,
		TierCounts:    map[string]int{},
		Features:      make([]renderedFeature, 0, len(geo.Features)),
	}

	styles := ctrl.Styles(geo.Features)
	for i, st := range styles {
		f := geo.Features[i]
		district := f.Property(overlay.DefaultKeys.District)
		if district == "" {
			district = f.Property(overlay.DefaultKeys.DistrictAlt)
		}
		out.Features = append(out.Features, renderedFeature{
			Street:   f.Property(overlay.DefaultKeys.Street),
			District: district,
			Style:    st,
		})
		out.TierCounts[st.Tier.String()]++
	}
	return out, nil
}

func writeRender(w io.Writer, out renderOutput, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
