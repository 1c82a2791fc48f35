package lifecycle

import "context"

// Provisioner implements the phase handlers of one resource graph.
type Provisioner interface {
	// Create starts creation and returns the data PollCreate needs.
	// Any error is terminal.
	Create(ctx context.Context, req *Request) (PollData, error)

	// PollCreate checks progress. It must not mutate remote state while
	// the resource is still pending.
	PollCreate(ctx context.Context, req *Request, data PollData) (Progress, error)

	// Update returns the physical id to report or rejects the update.
	Update(ctx context.Context, req *Request) (string, error)

	// Delete removes the resource. Failures are logged, never returned.
	Delete(ctx context.Context, req *Request)
}
