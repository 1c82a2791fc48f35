package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexkendra/lexkendra/internal/statestore"
)

func newRequest(t cfn.RequestType) *Request {
	return &Request{Event: cfn.Event{
		RequestType:        t,
		RequestID:          "req-1",
		StackID:            "arn:aws:cloudformation:us-east-1:123456789012:stack/chatbot/guid",
		LogicalResourceID:  "KendraIndex",
		ResponseURL:        "https://example.invalid/response",
		ResourceProperties: map[string]interface{}{"Name": "faq-idx"},
	}}
}

type machineFixture struct {
	provisioner *fakeProvisioner
	reporter    *recordingReporter
	scheduler   *LoopScheduler
	store       *statestore.Memory
	machine     *Machine
}

func newFixture(p *fakeProvisioner, opts ...Option) *machineFixture {
	f := &machineFixture{
		provisioner: p,
		reporter:    &recordingReporter{},
		scheduler:   &LoopScheduler{},
		store:       statestore.NewMemory(),
	}
	f.machine = NewMachine("test", p, f.reporter, f.scheduler, f.store, opts...)
	return f
}

func TestMachine_CreateSchedulesPolling(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{
		CreateFunc: func(context.Context, *Request) (PollData, error) {
			return PollData{PhysicalID: "idx-1", Values: map[string]string{"KendraIndexId": "idx-1"}}, nil
		},
	})

	req := newRequest(cfn.RequestCreate)
	require.NoError(t, f.machine.Handle(context.Background(), req))

	assert.Empty(t, f.reporter.all(), "create must not report while polling is pending")
	next, ok := f.scheduler.Next()
	require.True(t, ok)
	assert.Equal(t, PhasePollCreate, next.Phase())
	assert.Equal(t, "idx-1", next.Poll.Data.PhysicalID)
}

func TestMachine_CreateFailureIsTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{
		CreateFunc: func(context.Context, *Request) (PollData, error) {
			return PollData{}, &ValidationError{Property: "Edition"}
		},
	})

	require.NoError(t, f.machine.Handle(context.Background(), newRequest(cfn.RequestCreate)))

	results := f.reporter.all()
	require.Len(t, results, 1)
	assert.Equal(t, cfn.StatusFailed, results[0].Status)
	assert.Equal(t, "Edition is a required property", results[0].Reason)
	_, ok := f.scheduler.Next()
	assert.False(t, ok)
}

func TestMachine_PollCompletes(t *testing.T) {
	t.Parallel()

	polls := 0
	f := newFixture(&fakeProvisioner{
		CreateFunc: func(context.Context, *Request) (PollData, error) {
			return PollData{PhysicalID: "idx-1"}, nil
		},
		PollCreateFunc: func(_ context.Context, _ *Request, data PollData) (Progress, error) {
			polls++
			if polls < 3 {
				return Pending(), nil
			}
			return Completed(data.PhysicalID, map[string]string{"KendraIndexId": data.PhysicalID}), nil
		},
	})
	ctx := context.Background()

	req := newRequest(cfn.RequestCreate)
	require.NoError(t, f.machine.Handle(ctx, req))
	for {
		next, ok := f.scheduler.Next()
		if !ok {
			break
		}
		require.NoError(t, f.machine.Handle(ctx, next))
	}

	results := f.reporter.all()
	require.Len(t, results, 1)
	assert.Equal(t, cfn.StatusSuccess, results[0].Status)
	assert.Equal(t, "idx-1", results[0].PhysicalID)
	assert.Equal(t, "idx-1", results[0].Data["KendraIndexId"])
	assert.Equal(t, 3, polls)
	assert.Equal(t, 0, f.store.Len(), "poll counter is removed on success")
}

func TestMachine_PollBudgetExhausted(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{})
	ctx := context.Background()

	req := newRequest(cfn.RequestCreate)
	req.Poll = &PollState{Data: PollData{PhysicalID: "idx-1"}}

	for attempt := 1; attempt <= DefaultMaxPollAttempts; attempt++ {
		require.NoError(t, f.machine.Handle(ctx, req))
		assert.Empty(t, f.reporter.all(), "poll %d must stay pending", attempt)
		_, ok := f.scheduler.Next()
		assert.True(t, ok)
	}

	require.NoError(t, f.machine.Handle(ctx, req))
	results := f.reporter.all()
	require.Len(t, results, 1, "the fifth pending poll is terminal")
	assert.Equal(t, cfn.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Reason, "gave up waiting")
	assert.Equal(t, "idx-1", results[0].PhysicalID)
	assert.Equal(t, 0, f.store.Len(), "poll counter is removed on failure")
	_, ok := f.scheduler.Next()
	assert.False(t, ok)
}

func TestMachine_PollCustomCeiling(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{}, WithMaxPollAttempts(1))
	req := newRequest(cfn.RequestCreate)
	req.Poll = &PollState{}

	require.NoError(t, f.machine.Handle(context.Background(), req))
	require.NoError(t, f.machine.Handle(context.Background(), req))

	results := f.reporter.all()
	require.Len(t, results, 1)
	assert.Equal(t, cfn.StatusFailed, results[0].Status)
}

func TestMachine_PollRemoteFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{
		PollCreateFunc: func(context.Context, *Request, PollData) (Progress, error) {
			return Progress{}, &RemoteStateError{Resource: "Kendra index", ID: "idx-1", State: "FAILED", Message: "role not assumable"}
		},
	})
	req := newRequest(cfn.RequestCreate)
	req.Poll = &PollState{Data: PollData{PhysicalID: "idx-1"}}

	require.NoError(t, f.machine.Handle(context.Background(), req))

	results := f.reporter.all()
	require.Len(t, results, 1)
	assert.Equal(t, cfn.StatusFailed, results[0].Status)
	assert.Equal(t, "Kendra index idx-1 is in FAILED state: role not assumable", results[0].Reason)
}

func TestMachine_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		updateErr  error
		wantStatus cfn.StatusType
	}{
		{name: "rollback keeps physical id", wantStatus: cfn.StatusSuccess},
		{name: "update rejected", updateErr: ErrUpdatesNotSupported, wantStatus: cfn.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(&fakeProvisioner{
				UpdateFunc: func(_ context.Context, req *Request) (string, error) {
					return req.PhysicalResourceID, tt.updateErr
				},
			})
			req := newRequest(cfn.RequestUpdate)
			req.PhysicalResourceID = "idx-1"

			require.NoError(t, f.machine.Handle(context.Background(), req))

			results := f.reporter.all()
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantStatus, results[0].Status)
			assert.Equal(t, "idx-1", results[0].PhysicalID)
		})
	}
}

func TestMachine_DeleteAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	var slept time.Duration
	f := newFixture(&fakeProvisioner{},
		WithDeleteSettle(2*time.Minute),
		WithSleep(func(_ context.Context, d time.Duration) error {
			slept = d
			return nil
		}),
	)
	req := newRequest(cfn.RequestDelete)
	req.PhysicalResourceID = "idx-1"

	require.NoError(t, f.machine.Handle(context.Background(), req))
	require.NoError(t, f.machine.Handle(context.Background(), req))

	results := f.reporter.all()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, cfn.StatusSuccess, r.Status)
		assert.Equal(t, "idx-1", r.PhysicalID)
	}
	assert.Equal(t, 2*time.Minute, slept)
}

func TestMachine_ReportErrorIsReturned(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{})
	f.reporter.err = errors.New("response endpoint returned 403 Forbidden")

	err := f.machine.Handle(context.Background(), newRequest(cfn.RequestDelete))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestMachine_UnknownRequestType(t *testing.T) {
	t.Parallel()

	f := newFixture(&fakeProvisioner{})
	require.NoError(t, f.machine.Handle(context.Background(), newRequest("Replace")))

	results := f.reporter.all()
	require.Len(t, results, 1)
	assert.Equal(t, cfn.StatusFailed, results[0].Status)
	assert.Empty(t, f.provisioner.calls)
}
