package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// ExtractedParameters is the extraction service's full belief about the event.
// Optional fields are nil when the service has not determined them yet.
type ExtractedParameters struct {
	EventName           *string  `json:"event_name"`
	Venue               *string  `json:"venue"`
	Date                *string  `json:"date"`
	EndTime             *string  `json:"end_time"`
	Capacity            *int     `json:"capacity"`
	VIPNames            []string `json:"vip_names"`
	VIPAnalysis         *string  `json:"vip_analysis"`
	EstimatedMultiplier *float64 `json:"estimated_multiplier"`
	Confidence          *string  `json:"confidence"`
}

// UnmarshalJSON decodes the wire form and collapses duplicate VIP names,
// keeping the first occurrence of each.
func (p *ExtractedParameters) UnmarshalJSON(data []byte) error {
	type wire ExtractedParameters
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = ExtractedParameters(w)
	p.VIPNames = NormalizeVIPNames(p.VIPNames)
	return nil
}

// ReadyToSimulate reports whether the local gate for running a simulation
// holds: both the event name and the date must be non-empty after trimming.
func (p ExtractedParameters) ReadyToSimulate() bool {
	return len(p.MissingRequired()) == 0
}

// MissingRequired lists the wire names of the required fields that are absent.
func (p ExtractedParameters) MissingRequired() []string {
	var missing []string
	if isBlank(p.EventName) {
		missing = append(missing, "event_name")
	}
	if isBlank(p.Date) {
		missing = append(missing, "date")
	}
	return missing
}

// Clone returns a deep copy so callers cannot mutate session state.
func (p ExtractedParameters) Clone() ExtractedParameters {
	out := ExtractedParameters{
		EventName:           cloneRef(p.EventName),
		Venue:               cloneRef(p.Venue),
		Date:                cloneRef(p.Date),
		EndTime:             cloneRef(p.EndTime),
		Capacity:            cloneRef(p.Capacity),
		VIPAnalysis:         cloneRef(p.VIPAnalysis),
		EstimatedMultiplier: cloneRef(p.EstimatedMultiplier),
		Confidence:          cloneRef(p.Confidence),
	}
	// An empty list stays empty rather than becoming null on the wire.
	out.VIPNames = slices.Clone(p.VIPNames)
	return out
}

// NormalizeVIPNames trims names, drops empties and removes duplicates while
// keeping first-seen order for display.
func NormalizeVIPNames(names []string) []string {
	if names == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ChatReply is the extraction service's answer to one conversation round.
type ChatReply struct {
	Reply           string              `json:"reply"`
	ExtractedParams ExtractedParameters `json:"extracted_params"`
	ReadyToSimulate bool                `json:"ready_to_simulate"`
	MissingInfo     []string            `json:"missing_info"`
}

// StringValue dereferences an optional string, returning "" when nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ref returns a pointer to v. Handy for building optional fields.
func Ref[T any](v T) *T {
	return &v
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func cloneRef[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
