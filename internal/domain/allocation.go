package domain

import (
	"bytes"
	"encoding/json"
)

// Region is a named area with a resource need and an urgency score.
type Region struct {
	Name    string  `json:"name" yaml:"name"`
	Need    float64 `json:"need" yaml:"need"`
	Urgency float64 `json:"urgency" yaml:"urgency"`
}

// AllocationRequest is the payload posted to the allocation service.
type AllocationRequest struct {
	Regions  []Region `json:"regions"`
	Supplies float64  `json:"supplies"`

	// Capacity is an optional knapsack capacity understood by the service.
	Capacity *float64 `json:"capacity,omitempty"`
}

// NewAllocationRequest builds a request from already-parsed parts. A nil
// region slice is normalized to an empty one so it encodes as [] not null.
func NewAllocationRequest(regions []Region, supplies float64) AllocationRequest {
	if regions == nil {
		regions = []Region{}
	}
	return AllocationRequest{Regions: regions, Supplies: supplies}
}

// WithCapacity returns a copy of the request carrying the given capacity.
func (r AllocationRequest) WithCapacity(capacity float64) AllocationRequest {
	r.Capacity = &capacity
	return r
}

// AllocationResult is the opaque JSON value returned by the service.
type AllocationResult struct {
	Raw        json.RawMessage
	StatusCode int
}

// IsZero reports whether there is nothing to render: no body, or a JSON null.
func (r AllocationResult) IsZero() bool {
	trimmed := bytes.TrimSpace(r.Raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// MarshalJSON emits the raw payload so results embed verbatim in other documents.
func (r AllocationResult) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return bytes.TrimSpace(r.Raw), nil
}
