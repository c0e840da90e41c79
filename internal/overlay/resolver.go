package overlay

import "github.com/couchcryptid/event-traffic-controller/internal/domain"

// FeatureKeys names the GeoJSON properties the resolver reads.
type FeatureKeys struct {
	Street      string
	District    string
	DistrictAlt string
}

// DefaultKeys match the municipal road network extract.
var DefaultKeys = FeatureKeys{
	Street:      "denominazi",
	District:    "quartiere_",
	DistrictAlt: "quartier_1",
}

// Resolver maps features to styles for a given overlay and hour.
type Resolver struct {
	keys FeatureKeys
}

// NewResolver creates a resolver reading the given property names. Empty
// names fall back to DefaultKeys.
func NewResolver(keys FeatureKeys) *Resolver {
	if keys.Street == "" {
		keys.Street = DefaultKeys.Street
	}
	if keys.District == "" {
		keys.District = DefaultKeys.District
	}
	if keys.DistrictAlt == "" {
		keys.DistrictAlt = DefaultKeys.DistrictAlt
	}
	return &Resolver{keys: keys}
}

var defaultResolver = NewResolver(DefaultKeys)

// ResolveStyle resolves one feature with the default property names.
func ResolveStyle(f domain.Feature, active *domain.OverlayDataset, hourIndex int) Style {
	return defaultResolver.Resolve(f, active, hourIndex)
}

// Resolve resolves one feature. For many features against the same overlay
// and hour, use Frame to normalize the district map once.
func (r *Resolver) Resolve(f domain.Feature, active *domain.OverlayDataset, hourIndex int) Style {
	return r.Frame(active, hourIndex).Style(f)
}

// Frame is a resolver bound to one overlay and hour, valid for a single redraw.
type Frame struct {
	keys      FeatureKeys
	present   bool
	label     string
	streets   map[string]domain.Color
	districts map[string]domain.Color
}

// Frame prepares the lookups for one overlay and hour.
func (r *Resolver) Frame(active *domain.OverlayDataset, hourIndex int) Frame {
	if active.Validate() != nil {
		return Frame{keys: r.keys}
	}
	label := active.HourLabel(hourIndex)
	return Frame{
		keys:      r.keys,
		present:   true,
		label:     label,
		streets:   active.ByStreet[label],
		districts: normalizeDistricts(active.ByQuartiere[label]),
	}
}

// Label is the hour label the frame resolves against, "" without data.
func (fr Frame) Label() string {
	return fr.label
}

// Style resolves a feature against the frame.
func (fr Frame) Style(f domain.Feature) Style {
	if !fr.present {
		return NoDataStyle
	}
	if name := f.Property(fr.keys.Street); name != "" {
		if c, ok := fr.streets[name]; ok {
			return styleFor(c, SourceStreet)
		}
	}
	for _, key := range [...]string{fr.keys.District, fr.keys.DistrictAlt} {
		d := NormalizeDistrict(f.Property(key))
		if d == "" {
			continue
		}
		if c, ok := fr.districts[d]; ok {
			return styleFor(c, SourceDistrict)
		}
	}
	return styleFor(domain.ColorNormal, SourceDefault)
}
