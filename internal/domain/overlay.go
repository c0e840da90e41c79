package domain

import "errors"

// Color is a hex colour code from the fixed overlay palette.
type Color string

// Time-indexed overlay palette. The values are the wire contract and are
// compared case-sensitively.
const (
	ColorCritical Color = "#ff0000"
	ColorElevated Color = "#ffa500"
	ColorNormal   Color = "#00ff00"
)

// Legacy duotone used by the non-time-indexed intensity mode and for features
// with no simulation data.
const (
	ColorLegacyActive Color = "#000000"
	ColorMuted        Color = "#878787"
)

// ErrEmptyOverlay is returned when a dataset carries no hours.
var ErrEmptyOverlay = errors.New("overlay dataset has no hours")

// OverlayDataset is an hour-indexed congestion colour map returned by the
// simulation and baseline endpoints.
type OverlayDataset struct {
	Hours          []string                    `json:"hours"`
	ByStreet       map[string]map[string]Color `json:"by_street"`
	ByNeighborhood map[string]map[string]Color `json:"by_neighborhood,omitempty"`
	ByQuartiere    map[string]map[string]Color `json:"by_quartiere"`
}

// Validate reports ErrEmptyOverlay for a nil dataset or one without hours.
func (o *OverlayDataset) Validate() error {
	if o == nil || len(o.Hours) == 0 {
		return ErrEmptyOverlay
	}
	return nil
}

// ClampHour maps any index onto the dataset's hour range. A nil or empty
// dataset clamps to 0.
func (o *OverlayDataset) ClampHour(i int) int {
	if o == nil || len(o.Hours) == 0 || i < 0 {
		return 0
	}
	if i >= len(o.Hours) {
		return len(o.Hours) - 1
	}
	return i
}

// HourLabel returns the time label for a clamped index, or "" for an empty dataset.
func (o *OverlayDataset) HourLabel(i int) string {
	if o == nil || len(o.Hours) == 0 {
		return ""
	}
	return o.Hours[o.ClampHour(i)]
}

// TierCounts tallies street colours per hour label, folding unknown colours
// into the normal tier.
func (o *OverlayDataset) TierCounts(label string) map[Color]int {
	counts := map[Color]int{ColorCritical: 0, ColorElevated: 0, ColorNormal: 0}
	if o == nil {
		return counts
	}
	for _, c := range o.ByStreet[label] {
		switch c {
		case ColorCritical, ColorElevated:
			counts[c]++
		default:
			counts[ColorNormal]++
		}
	}
	return counts
}
