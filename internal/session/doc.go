// Package session owns the per-tab state of the event traffic controller.
//
// A ChatSession accumulates the conversation and the latest parameter
// snapshot; a SimulationSession owns the primary overlay, the cached baseline
// and the selected hour. Each piece of state has exactly one writer: the
// operation that owns it. Locks are never held across a backend call, and
// overlapping calls to the same gateway are rejected rather than queued.
package session
