// Package session holds the single piece of shared UI state: the latest
// submission's inputs and outcome.
//
// Every submission takes a [Ticket] from [Store.Begin]. Tickets carry a
// generation that increases by one per submission, and only the newest
// ticket may commit. Starting a submission cancels the context handed to the
// one it supersedes, so a slow earlier response can neither overwrite a newer
// result nor keep a connection open for nothing.
package session

import (
	"context"
	"sync"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/google/uuid"
)

// Status is the coarse state of the store.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusPending Status = "pending"
	StatusOK      Status = "ok"
	StatusError   Status = "error"
)

// Inputs are the raw form field values of a submission.
type Inputs struct {
	Regions  string
	Supplies string
	Capacity string // optional
}

// Ticket identifies one submission.
type Ticket struct {
	Generation   uint64
	SubmissionID string
}

// Snapshot is a copy of the store's state at one point in time.
type Snapshot struct {
	Generation uint64
	Inputs     Inputs
	Outcome    *domain.Outcome
	Pending    bool
}

// Status derives the coarse state from the snapshot. A pending submission
// takes precedence over the outcome of the one before it.
func (s Snapshot) Status() Status {
	switch {
	case s.Pending:
		return StatusPending
	case s.Outcome == nil:
		return StatusEmpty
	case s.Outcome.OK():
		return StatusOK
	default:
		return StatusError
	}
}

// Store is the owned state container. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	inputs     Inputs
	outcome    *domain.Outcome
	pending    bool
}

// NewStore returns an empty store whose form starts with the given inputs.
func NewStore(initial Inputs) *Store {
	return &Store{inputs: initial}
}

// Begin starts a submission. The returned context is canceled when a newer
// submission begins or when the submission commits.
func (s *Store) Begin(ctx context.Context, in Inputs) (Ticket, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inputs = in
	s.pending = true

	return Ticket{Generation: s.generation, SubmissionID: uuid.NewString()}, subCtx
}

// Commit records the outcome of t. It reports false, and changes nothing,
// when a newer submission has begun since t was issued.
func (s *Store) Commit(t Ticket, o domain.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Generation != s.generation {
		return false
	}
	s.outcome = &o
	s.pending = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Generation: s.generation,
		Inputs:     s.inputs,
		Pending:    s.pending,
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	return snap
}
