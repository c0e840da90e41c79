package domain

import "context"

// ExtractionGateway turns conversation history into an updated parameter snapshot.
type ExtractionGateway interface {
	Extract(ctx context.Context, history []ChatMessage) (ChatReply, error)
}

// SimulationGateway turns a finalized parameter set into an overlay dataset.
type SimulationGateway interface {
	Simulate(ctx context.Context, req SimulationRequest) (*OverlayDataset, error)
}

// BaselineSource returns the no-event overlay for a date.
type BaselineSource interface {
	Baseline(ctx context.Context, date string) (*OverlayDataset, error)
}

// GeometrySource returns the road network feature collection.
type GeometrySource interface {
	Geometry(ctx context.Context) (FeatureCollection, error)
}

// SimulationPublisher receives a record of every successful simulation.
type SimulationPublisher interface {
	Publish(ctx context.Context, rec SimulationRecord) error
}
