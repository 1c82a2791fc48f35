package lifecycle

import (
	"context"
	"sync"
)

// fakeProvisioner implements Provisioner with func fields.
type fakeProvisioner struct {
	CreateFunc     func(ctx context.Context, req *Request) (PollData, error)
	PollCreateFunc func(ctx context.Context, req *Request, data PollData) (Progress, error)
	UpdateFunc     func(ctx context.Context, req *Request) (string, error)
	DeleteFunc     func(ctx context.Context, req *Request)

	mu    sync.Mutex
	calls []Phase
}

func (f *fakeProvisioner) record(p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
}

func (f *fakeProvisioner) Create(ctx context.Context, req *Request) (PollData, error) {
	f.record(PhaseCreate)
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, req)
	}
	return PollData{}, nil
}

func (f *fakeProvisioner) PollCreate(ctx context.Context, req *Request, data PollData) (Progress, error) {
	f.record(PhasePollCreate)
	if f.PollCreateFunc != nil {
		return f.PollCreateFunc(ctx, req, data)
	}
	return Pending(), nil
}

func (f *fakeProvisioner) Update(ctx context.Context, req *Request) (string, error) {
	f.record(PhaseUpdate)
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, req)
	}
	return req.PhysicalResourceID, nil
}

func (f *fakeProvisioner) Delete(ctx context.Context, req *Request) {
	f.record(PhaseDelete)
	if f.DeleteFunc != nil {
		f.DeleteFunc(ctx, req)
	}
}

// recordingReporter keeps every reported result.
type recordingReporter struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (r *recordingReporter) Report(_ context.Context, _ *Request, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return r.err
}

func (r *recordingReporter) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}
