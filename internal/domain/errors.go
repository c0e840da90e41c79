package domain

import "errors"

// ErrInsufficientParameters is returned when the readiness gate does not hold.
var ErrInsufficientParameters = errors.New("insufficient parameters")
