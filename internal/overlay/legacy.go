package overlay

import "github.com/couchcryptid/event-traffic-controller/internal/domain"

// ResolveLegacyStyle styles a segment in the non-time-indexed intensity mode:
// a segment becomes active once the global intensity (0-100) reaches its
// threshold and thickens as intensity grows.
func ResolveLegacyStyle(intensity, threshold float64) Style {
	if intensity < threshold {
		return Style{
			Color:   domain.ColorMuted,
			Weight:  1,
			Opacity: 0.2,
			Tier:    TierNoData,
			Source:  SourceLegacy,
		}
	}
	return Style{
		Color:   domain.ColorLegacyActive,
		Weight:  2 + intensity/20,
		Opacity: 1,
		Tier:    TierLegacyActive,
		Source:  SourceLegacy,
	}
}
