package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEncodeRequest is returned when a request cannot be serialized.
	ErrEncodeRequest = errors.New("encode request")
	// ErrTransport is returned when the service cannot be reached.
	ErrTransport = errors.New("allocation service unreachable")
	// ErrDecodeResponse is returned when the service replies with something other than JSON.
	ErrDecodeResponse = errors.New("decode response")
)

// Category classifies why a submission failed.
type Category string

const (
	CategoryNone      Category = ""
	CategoryInput     Category = "input"
	CategoryEncode    Category = "encode"
	CategoryTransport Category = "transport"
	CategoryDecode    Category = "decode"
	CategoryCanceled  Category = "canceled"
)

// Classify maps an error from any submission stage to its category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrInvalidRegions), errors.Is(err, ErrInvalidSupplies), errors.Is(err, ErrInvalidCapacity):
		return CategoryInput
	case errors.Is(err, context.Canceled):
		return CategoryCanceled
	case errors.Is(err, ErrEncodeRequest):
		return CategoryEncode
	case errors.Is(err, ErrDecodeResponse):
		return CategoryDecode
	default:
		return CategoryTransport
	}
}

// OutcomeError is a submission failure tagged with its category.
type OutcomeError struct {
	Category Category
	Err      error
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *OutcomeError) Unwrap() error { return e.Err }

// Outcome is the end state of one submission: a result or an error, never both.
type Outcome struct {
	SubmissionID string
	Request      *AllocationRequest
	Result       AllocationResult
	Err          *OutcomeError
	CompletedAt  time.Time
}

// Succeeded builds a successful outcome.
func Succeeded(id string, req AllocationRequest, result AllocationResult) Outcome {
	return Outcome{
		SubmissionID: id,
		Request:      &req,
		Result:       result,
		CompletedAt:  clock.Now().UTC(),
	}
}

// Failed builds a failed outcome. req may be nil when input never parsed.
func Failed(id string, req *AllocationRequest, err error) Outcome {
	return Outcome{
		SubmissionID: id,
		Request:      req,
		Err:          &OutcomeError{Category: Classify(err), Err: err},
		CompletedAt:  clock.Now().UTC(),
	}
}

// OK reports whether the outcome carries a result.
func (o Outcome) OK() bool { return o.Err == nil }

// Category returns the failure category, or CategoryNone on success.
func (o Outcome) Category() Category {
	if o.Err == nil {
		return CategoryNone
	}
	return o.Err.Category
}

// Label is "ok" for successes and the category name otherwise.
func (o Outcome) Label() string {
	if o.Err == nil {
		return "ok"
	}
	return string(o.Err.Category)
}
