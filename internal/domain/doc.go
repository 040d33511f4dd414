// Package domain models the request and response of a weather-crisis
// resource allocation round trip.
//
// # Allocation Service
//
// The allocation decision itself is made by an external HTTP service
// (historically a small Flask app listening on 127.0.0.1:5000). This
// repository is its client: it collects input, posts one request, and shows
// whatever JSON comes back. Nothing here knows how the service allocates.
//
// # Request Shape
//
//	{
//	  "regions": [
//	    {"name": "Region A", "need": 20, "urgency": 9}
//	  ],
//	  "supplies": 50
//	}
//
// Regions are entered as free text. [ParseRegions] accepts only a JSON array
// of objects carrying exactly name (string), need (number) and urgency
// (number). Extra keys, missing keys, trailing data and non-array values are
// rejected with [ErrInvalidRegions]. An accepted list re-encodes with the
// same names, values and order, though numbers come back in their shortest
// float64 form (20.0 becomes 20).
//
// Supplies follow numeric form-field coercion: surrounding whitespace is
// ignored, an empty field counts as 0, anything else must be a finite decimal
// number ([ErrInvalidSupplies] otherwise). No range or sign checks are made;
// a negative budget is the service's problem.
//
// The service also honors an optional "capacity" key. It is omitted from the
// body unless set.
//
// # Response Shape
//
// The response is an arbitrary JSON value ([AllocationResult]). It is kept as
// raw bytes and rendered by [RenderResult] with two-space indentation. An
// error payload from the service renders exactly like a success payload.
//
// # Outcomes
//
// Every submission ends in an [Outcome]: either a result or an
// [OutcomeError] tagged with a [Category] (input, encode, transport, decode,
// canceled). Failures never escape as panics or unhandled errors.
package domain
