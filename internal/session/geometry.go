package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Geometry fetch retry policy.
var (
	geometryAttempts       = 3
	geometryInitialBackoff = 250 * time.Millisecond
	geometryMaxBackoff     = 2 * time.Second
)

// Geometry is the road network to render. When Offline is set the map could
// not be loaded and renderers show a fallback indicator instead.
type Geometry struct {
	Features []domain.Feature
	Offline  bool
	Reason   string
}

// LoadGeometry fetches the road network, retrying transient failures with
// backoff and degrading to offline mode once attempts run out. It never
// returns an error.
func LoadGeometry(ctx context.Context, src domain.GeometrySource, logger *slog.Logger, metrics *observability.Metrics) Geometry {
	if src == nil {
		return offline("no geometry source configured", metrics)
	}

	var (
		fc      domain.FeatureCollection
		err     error
		backoff = geometryInitialBackoff
	)
	for attempt := 1; attempt <= geometryAttempts; attempt++ {
		fc, err = src.Geometry(ctx)
		if err == nil {
			break
		}
		if attempt == geometryAttempts {
			break
		}
		logger.Debug("map geometry fetch failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, geometryMaxBackoff)
	}
	if err != nil {
		logger.Warn("map geometry unavailable, using offline mode", "error", err)
		return offline(err.Error(), metrics)
	}
	if len(fc.Features) == 0 {
		logger.Warn("map geometry is empty, using offline mode")
		return offline("map geometry is empty", metrics)
	}

	metrics.GeometryOffline.Set(0)
	logger.Debug("map geometry loaded", "features", len(fc.Features))
	return Geometry{Features: fc.Features}
}

func offline(reason string, metrics *observability.Metrics) Geometry {
	metrics.GeometryOffline.Set(1)
	return Geometry{Offline: true, Reason: reason}
}
