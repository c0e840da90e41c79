package session

import "errors"

var (
	// ErrEmptyMessage is returned when a submitted message is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrChatBusy is returned when an extraction call is already in flight.
	ErrChatBusy = errors.New("extraction already in progress")
	// ErrSimulationBusy is returned when a simulation call is already in flight.
	ErrSimulationBusy = errors.New("simulation already in progress")
	// ErrBaselineBusy is returned when a baseline fetch is already in flight.
	ErrBaselineBusy = errors.New("baseline fetch already in progress")
	// ErrNoDate is returned when a baseline is requested before any date is known.
	ErrNoDate = errors.New("no date available for baseline")
	// ErrStaleResponse is returned when a response arrives after the session moved on.
	ErrStaleResponse = errors.New("response no longer matches session state")
)
