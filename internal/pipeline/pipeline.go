package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
)

const publishTimeout = 5 * time.Second

// Dispatcher sends one allocation request and returns the service's reply.
type Dispatcher interface {
	Send(ctx context.Context, req domain.AllocationRequest) (domain.AllocationResult, error)
}

// OutcomePublisher records committed outcomes somewhere downstream.
type OutcomePublisher interface {
	Publish(ctx context.Context, outcome domain.Outcome) error
}

// Pipeline runs the collect-dispatch-commit sequence for each submission.
// It is the only writer of its session store.
type Pipeline struct {
	dispatcher Dispatcher
	store      *session.Store
	publisher  OutcomePublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. Pass a nil publisher to disable outcome publishing.
func New(d Dispatcher, store *session.Store, publisher OutcomePublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		dispatcher: d,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
	}
}

// Store returns the session store this pipeline writes to.
func (p *Pipeline) Store() *session.Store { return p.store }

// Submit parses the form inputs, dispatches one request when they are valid,
// and commits the outcome. Invalid input never reaches the dispatcher. The
// returned outcome is the submission's own, even when a newer submission
// prevented it from being committed.
func (p *Pipeline) Submit(ctx context.Context, in session.Inputs) domain.Outcome {
	ticket, subCtx := p.store.Begin(ctx, in)
	logger := p.logger.With("submission_id", ticket.SubmissionID, "generation", ticket.Generation)

	p.metrics.SubmissionsActive.Inc()
	defer p.metrics.SubmissionsActive.Dec()

	outcome := p.run(subCtx, ticket, in, logger)

	if !p.store.Commit(ticket, outcome) {
		p.metrics.StaleOutcomes.Inc()
		logger.Info("submission superseded, outcome dropped", "outcome", outcome.Label())
		return outcome
	}
	p.metrics.Submissions.WithLabelValues(outcome.Label()).Inc()

	if outcome.OK() {
		logger.Info("submission committed", "status", outcome.Result.StatusCode)
	} else {
		logger.Warn("submission failed", "category", outcome.Category(), "error", outcome.Err)
	}

	p.publish(ctx, outcome, logger)
	return outcome
}

func (p *Pipeline) run(ctx context.Context, ticket session.Ticket, in session.Inputs, logger *slog.Logger) domain.Outcome {
	req, err := parseInputs(in)
	if err != nil {
		return domain.Failed(ticket.SubmissionID, nil, err)
	}

	logger.Debug("dispatching allocation request", "regions", len(req.Regions), "supplies", req.Supplies)
	result, err := p.dispatcher.Send(ctx, req)
	if err != nil {
		return domain.Failed(ticket.SubmissionID, &req, err)
	}
	return domain.Succeeded(ticket.SubmissionID, req, result)
}

func parseInputs(in session.Inputs) (domain.AllocationRequest, error) {
	req, err := domain.ParseAllocationRequest(in.Regions, in.Supplies)
	if err != nil {
		return domain.AllocationRequest{}, err
	}
	capacity, err := domain.ParseCapacity(in.Capacity)
	if err != nil {
		return domain.AllocationRequest{}, err
	}
	if capacity != nil {
		req = req.WithCapacity(*capacity)
	}
	return req, nil
}

// publish is best-effort: failures are logged and counted, never surfaced.
func (p *Pipeline) publish(ctx context.Context, outcome domain.Outcome, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.publisher.Publish(pubCtx, outcome); err != nil {
		p.metrics.OutcomesPublished.WithLabelValues("error").Inc()
		logger.Warn("publish outcome failed", "error", err)
		return
	}
	p.metrics.OutcomesPublished.WithLabelValues("success").Inc()
}
