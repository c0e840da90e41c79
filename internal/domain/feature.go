package domain

import (
	"fmt"
	"strings"
)

// Feature is the subset of a GeoJSON feature the overlay needs: its
// properties. Geometry is passed through untouched for renderers.
type Feature struct {
	Type       string         `json:"type,omitempty"`
	Properties map[string]any `json:"properties"`
	Geometry   any            `json:"geometry,omitempty"`
}

// Property returns the string form of a property, trimmed. Missing and null
// properties yield "".
func (f Feature) Property(key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
