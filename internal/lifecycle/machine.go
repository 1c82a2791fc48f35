package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/statestore"
)

// DefaultMaxPollAttempts is the number of pending polls tolerated before
// creation is reported as failed.
const DefaultMaxPollAttempts = 4

// Machine dispatches requests for one resource graph.
type Machine struct {
	resource    string
	provisioner Provisioner
	reporter    Reporter
	scheduler   Scheduler
	counter     *statestore.Counter

	maxPollAttempts int
	deleteSettle    time.Duration
	sleep           func(context.Context, time.Duration) error
	now             func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxPollAttempts sets the pending poll ceiling.
func WithMaxPollAttempts(n int) Option {
	return func(m *Machine) {
		m.maxPollAttempts = n
	}
}

// WithDeleteSettle delays the delete report so that dependent resources
// in the stack are not torn down while the remote deletion is still
// propagating.
func WithDeleteSettle(d time.Duration) Option {
	return func(m *Machine) {
		m.deleteSettle = d
	}
}

// WithSleep replaces the function used for fixed waits.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(m *Machine) {
		m.sleep = fn
	}
}

// NewMachine binds a provisioner to its reporter, scheduler and poll counter.
// resource names the graph in logs and metrics.
func NewMachine(resource string, p Provisioner, r Reporter, s Scheduler, store statestore.Store, opts ...Option) *Machine {
	m := &Machine{
		resource:        resource,
		provisioner:     p,
		reporter:        r,
		scheduler:       s,
		counter:         statestore.NewCounter(store),
		maxPollAttempts: DefaultMaxPollAttempts,
		sleep:           Sleep,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle runs the phase selected by req. The returned error is non-nil only
// when the request could not be handled or its result could not be reported.
func (m *Machine) Handle(ctx context.Context, req *Request) error {
	phase := req.Phase()
	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"resource", m.resource,
		"phase", phase.String(),
		"requestId", req.RequestID,
		"logicalResourceId", req.LogicalResourceID,
	)
	ctx = logr.NewContext(ctx, logger)
	start := m.now()

	var (
		outcome string
		err     error
	)
	switch phase {
	case PhaseCreate:
		outcome, err = m.create(ctx, req)
	case PhasePollCreate:
		outcome, err = m.pollCreate(ctx, req)
	case PhaseUpdate:
		outcome, err = m.update(ctx, req)
	case PhaseDelete:
		outcome, err = m.delete(ctx, req)
	default:
		outcome = outcomeFailed
		err = m.reporter.Report(ctx, req, Failure("", fmt.Errorf("unsupported request type %q", req.RequestType)))
	}

	recordPhaseMetric(m.resource, phase, outcome, m.now().Sub(start).Seconds())
	if err != nil {
		logger.Error(err, "Request handling failed")
	}
	return err
}

func (m *Machine) create(ctx context.Context, req *Request) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)

	data, err := m.provisioner.Create(ctx, req)
	if err != nil {
		logger.Error(err, "Create failed")
		return outcomeFailed, m.reporter.Report(ctx, req, Failure(data.PhysicalID, err))
	}

	if err := m.scheduler.Start(ctx, req, data); err != nil {
		logger.Error(err, "Failed to schedule polling")
		_ = m.scheduler.Stop(ctx, req)
		return outcomeFailed, m.reporter.Report(ctx, req, Failure(data.PhysicalID, err))
	}
	logger.Info("Create started, polling for completion", "physicalId", data.PhysicalID)
	return outcomePending, nil
}

func (m *Machine) pollCreate(ctx context.Context, req *Request) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)
	key := statestore.PollCountKey(req.Scope(), req.RequestID)

	progress, err := m.provisioner.PollCreate(ctx, req, req.Poll.Data)
	if err != nil {
		logger.Error(err, "Poll failed")
		return outcomeFailed, m.finish(ctx, req, key, Failure(req.Poll.Data.PhysicalID, err))
	}
	if progress.Done {
		logger.Info("Create completed", "physicalId", progress.PhysicalID)
		return outcomeSuccess, m.finish(ctx, req, key, Success(progress.PhysicalID, progress.Data))
	}

	count, err := m.counter.Increment(ctx, key)
	if err != nil {
		err = fmt.Errorf("failed to record poll attempt: %w", err)
		return outcomeFailed, m.finish(ctx, req, key, Failure(req.Poll.Data.PhysicalID, err))
	}
	if count > m.maxPollAttempts {
		err = fmt.Errorf("%w after %d polls", ErrPollBudgetExhausted, count)
		logger.Error(err, "Resource did not become ready")
		return outcomeFailed, m.finish(ctx, req, key, Failure(req.Poll.Data.PhysicalID, err))
	}

	logger.Info("Resource still pending", "attempt", count, "maxAttempts", m.maxPollAttempts)
	if err := m.scheduler.Continue(ctx, req); err != nil {
		return outcomeFailed, m.finish(ctx, req, key, Failure(req.Poll.Data.PhysicalID, err))
	}
	return outcomePending, nil
}

// finish clears the poll bookkeeping of a terminal request and reports it.
func (m *Machine) finish(ctx context.Context, req *Request, key string, result Result) error {
	logger := logr.FromContextOrDiscard(ctx)

	if attempts, err := m.counter.Value(ctx, key); err == nil {
		recordPollAttemptsMetric(m.resource, attempts)
	}
	if err := m.counter.Clear(ctx, key); err != nil {
		logger.Error(err, "Failed to clear poll counter", "key", key)
	}
	if err := m.scheduler.Stop(ctx, req); err != nil {
		logger.Error(err, "Failed to stop polling")
	}
	return m.reporter.Report(ctx, req, result)
}

func (m *Machine) update(ctx context.Context, req *Request) (string, error) {
	id, err := m.provisioner.Update(ctx, req)
	if err != nil {
		logr.FromContextOrDiscard(ctx).Error(err, "Update rejected")
		return outcomeFailed, m.reporter.Report(ctx, req, Failure(req.PhysicalResourceID, err))
	}
	return outcomeSuccess, m.reporter.Report(ctx, req, Success(id, nil))
}

func (m *Machine) delete(ctx context.Context, req *Request) (string, error) {
	m.provisioner.Delete(ctx, req)

	if m.deleteSettle > 0 {
		logr.FromContextOrDiscard(ctx).Info("Waiting for deletion to settle", "delay", m.deleteSettle)
		if err := m.sleep(ctx, m.deleteSettle); err != nil {
			logr.FromContextOrDiscard(ctx).Error(err, "Settle delay interrupted")
		}
	}
	return outcomeSuccess, m.reporter.Report(ctx, req, Success(req.PhysicalResourceID, nil))
}
