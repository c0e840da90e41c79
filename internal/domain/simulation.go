package domain

import "time"

// Defaults applied when the conversation has not settled a value.
const (
	DefaultCapacity     = 1000
	DefaultEventEndTime = "22:00"
)

// SimulationRequest is the body of the simulate endpoint. Venue and
// Multiplier are omitted from the wire when nil so the server picks them.
type SimulationRequest struct {
	EventName    string   `json:"event_name"`
	Capacity     int      `json:"capacity"`
	VIPNames     []string `json:"vip_names"`
	Date         string   `json:"date"`
	EventEndTime string   `json:"event_end_time"`
	EventVenue   *string  `json:"event_venue,omitempty"`
	Multiplier   *float64 `json:"multiplier,omitempty"`
}

// BuildSimulationRequest maps extracted parameters onto a simulate request,
// filling defaults. Callers check the readiness gate first.
func BuildSimulationRequest(p ExtractedParameters) SimulationRequest {
	req := SimulationRequest{
		EventName:    StringValue(p.EventName),
		Capacity:     DefaultCapacity,
		VIPNames:     p.VIPNames,
		Date:         StringValue(p.Date),
		EventEndTime: DefaultEventEndTime,
	}
	// A zero capacity is treated as unknown.
	if p.Capacity != nil && *p.Capacity > 0 {
		req.Capacity = *p.Capacity
	}
	if req.VIPNames == nil {
		req.VIPNames = []string{}
	}
	if p.EndTime != nil && *p.EndTime != "" {
		req.EventEndTime = *p.EndTime
	}
	if p.Venue != nil && *p.Venue != "" {
		req.EventVenue = Ref(*p.Venue)
	}
	if p.EstimatedMultiplier != nil {
		req.Multiplier = Ref(*p.EstimatedMultiplier)
	}
	return req
}

// SimulationRecord summarizes a completed simulation for downstream consumers.
type SimulationRecord struct {
	SessionID    string            `json:"session_id"`
	Request      SimulationRequest `json:"request"`
	Hours        []string          `json:"hours"`
	PeakHour     string            `json:"peak_hour,omitempty"`
	PeakCritical int               `json:"peak_critical_streets"`
	SimulatedAt  time.Time         `json:"simulated_at"`
}

// NewSimulationRecord builds a record, locating the hour with the most
// critical streets.
func NewSimulationRecord(sessionID string, req SimulationRequest, o *OverlayDataset) SimulationRecord {
	rec := SimulationRecord{
		SessionID:   sessionID,
		Request:     req,
		SimulatedAt: clock.Now().UTC(),
	}
	if o == nil {
		return rec
	}
	rec.Hours = append([]string(nil), o.Hours...)
	for _, h := range o.Hours {
		n := o.TierCounts(h)[ColorCritical]
		if rec.PeakHour == "" || n > rec.PeakCritical {
			rec.PeakHour = h
			rec.PeakCritical = n
		}
	}
	return rec
}
