package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Endpoint string
	Status   int
	// Detail is the server-provided message, empty when none was sent.
	Detail string
}

// Error returns the server's detail when present, else the HTTP status.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// newAPIError reads the optional {"detail": "..."} body. Structured details
// (validation error lists) are not surfaced verbatim.
func newAPIError(endpoint string, resp *http.Response) *APIError {
	apiErr := &APIError{Endpoint: endpoint, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		apiErr.Detail = detail
	}
	return apiErr
}
