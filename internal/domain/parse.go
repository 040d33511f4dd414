package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRegions is returned when region text is not a valid region list.
	ErrInvalidRegions = errors.New("invalid regions")
	// ErrInvalidSupplies is returned when supply text is not a finite number.
	ErrInvalidSupplies = errors.New("invalid supplies")
	// ErrInvalidCapacity is returned when capacity text is set but not a whole number.
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// rawRegion uses pointers so missing keys are distinguishable from zero values.
type rawRegion struct {
	Name    *string  `json:"name"`
	Need    *float64 `json:"need"`
	Urgency *float64 `json:"urgency"`
}

// ParseRegions decodes region text into a typed region list.
func ParseRegions(text string) ([]Region, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidRegions)
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidRegions)
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var raws []rawRegion
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegions, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after array", ErrInvalidRegions)
	}

	regions := make([]Region, 0, len(raws))
	for i, r := range raws {
		switch {
		case r.Name == nil:
			return nil, fmt.Errorf("%w: region %d: missing name", ErrInvalidRegions, i)
		case r.Need == nil:
			return nil, fmt.Errorf("%w: region %d: missing need", ErrInvalidRegions, i)
		case r.Urgency == nil:
			return nil, fmt.Errorf("%w: region %d: missing urgency", ErrInvalidRegions, i)
		}
		regions = append(regions, Region{Name: *r.Name, Need: *r.Need, Urgency: *r.Urgency})
	}
	return regions, nil
}

// ParseSupplies coerces supply text to a number. Blank text is 0.
func ParseSupplies(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSupplies, trimmed)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidSupplies, trimmed)
	}
	return v, nil
}

// ParseCapacity parses the optional capacity field. Blank text means unset.
// The service sizes a table by capacity, so only non-negative integers pass.
func ParseCapacity(text string) (*float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidCapacity, trimmed)
	}
	v := float64(n)
	return &v, nil
}

// ParseAllocationRequest runs both parse steps and assembles a request.
func ParseAllocationRequest(regionsText, suppliesText string) (AllocationRequest, error) {
	regions, err := ParseRegions(regionsText)
	if err != nil {
		return AllocationRequest{}, err
	}
	supplies, err := ParseSupplies(suppliesText)
	if err != nil {
		return AllocationRequest{}, err
	}
	return NewAllocationRequest(regions, supplies), nil
}

// EncodeRequest returns the exact body that is posted to the service.
func EncodeRequest(req AllocationRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if req.Regions == nil {
		req.Regions = []Region{}
	}
	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
