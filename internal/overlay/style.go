// Package overlay resolves per-feature map styles from a simulation overlay.
//
// Resolution is a fixed fallback chain evaluated for one hour label:
//
//	street colour → district colour → default (normal) colour
//
// An absent overlay short-circuits to the muted no-data style, which is
// deliberately distinct from the default colour of a dataset that simply has
// no entry for a feature.
package overlay

import "github.com/couchcryptid/event-traffic-controller/internal/domain"

// Tier is a severity class derived from an overlay colour.
type Tier int

const (
	TierNoData Tier = iota
	TierNormal
	TierElevated
	TierCritical
	TierLegacyActive
)

func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "normal"
	case TierElevated:
		return "elevated"
	case TierCritical:
		return "critical"
	case TierLegacyActive:
		return "legacy_active"
	default:
		return "no_data"
	}
}

// MarshalText renders the tier by name in JSON and YAML output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Source names the rung of the fallback chain that produced a style.
type Source string

const (
	SourceStreet   Source = "street"
	SourceDistrict Source = "district"
	SourceDefault  Source = "default"
	SourceNoData   Source = "no_data"
	SourceLegacy   Source = "legacy"
)

// Style is what a renderer needs to draw one feature.
type Style struct {
	Color   domain.Color `json:"color" yaml:"color"`
	Weight  float64      `json:"weight" yaml:"weight"`
	Opacity float64      `json:"opacity" yaml:"opacity"`
	Tier    Tier         `json:"tier" yaml:"tier"`
	Source  Source       `json:"source" yaml:"source"`
}

type appearance struct {
	weight  float64
	opacity float64
}

// tierByColor covers the whole palette. Colours outside it fold to TierNormal.
var tierByColor = map[domain.Color]Tier{
	domain.ColorCritical:     TierCritical,
	domain.ColorElevated:     TierElevated,
	domain.ColorNormal:       TierNormal,
	domain.ColorLegacyActive: TierLegacyActive,
	domain.ColorMuted:        TierNoData,
}

var appearanceByTier = map[Tier]appearance{
	TierNoData:       {weight: 1, opacity: 0.3},
	TierNormal:       {weight: 2, opacity: 0.8},
	TierElevated:     {weight: 3.5, opacity: 0.9},
	TierCritical:     {weight: 5, opacity: 1},
	TierLegacyActive: {weight: 2, opacity: 1},
}

// NoDataStyle is rendered when no simulation result is active.
var NoDataStyle = Style{
	Color:   domain.ColorMuted,
	Weight:  appearanceByTier[TierNoData].weight,
	Opacity: appearanceByTier[TierNoData].opacity,
	Tier:    TierNoData,
	Source:  SourceNoData,
}

// TierOf classifies a colour. Unknown colours are normal traffic.
func TierOf(c domain.Color) Tier {
	if t, ok := tierByColor[c]; ok {
		return t
	}
	return TierNormal
}

// styleFor builds the style for a palette colour. Unknown colours are
// rendered as the normal colour so the output always stays within the palette.
func styleFor(c domain.Color, src Source) Style {
	tier, ok := tierByColor[c]
	if !ok {
		tier, c = TierNormal, domain.ColorNormal
	}
	a := appearanceByTier[tier]
	return Style{Color: c, Weight: a.weight, Opacity: a.opacity, Tier: tier, Source: src}
}
