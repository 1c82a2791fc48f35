package lifecycle

import (
	"strings"

	"github.com/aws/aws-lambda-go/cfn"

	"github.com/lexkendra/lexkendra/internal/statestore"
)

// Phase is the handler a request is dispatched to.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseCreate
	PhasePollCreate
	PhaseUpdate
	PhaseDelete
)

func (p Phase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhasePollCreate:
		return "poll_create"
	case PhaseUpdate:
		return "update"
	case PhaseDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Request is a custom resource event plus the poll block added by a
// scheduler once Create has run.
type Request struct {
	cfn.Event
	Poll *PollState `json:"LexKendraPoll,omitempty"`
}

// PollState is carried from Create to every PollCreate invocation.
type PollState struct {
	Data PollData `json:"data"`

	// RuleName and StatementID identify the EventBridge rule and the
	// Lambda permission created for repolling.
	RuleName    string `json:"ruleName,omitempty"`
	StatementID string `json:"statementId,omitempty"`
}

// PollData is the intermediate result of Create.
type PollData struct {
	PhysicalID string            `json:"physicalId,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
}

// Progress is the outcome of one PollCreate call.
type Progress struct {
	Done       bool
	PhysicalID string
	Data       map[string]string
}

// Pending reports that the resource is not ready yet.
func Pending() Progress {
	return Progress{}
}

// Completed reports the terminal physical id and response data.
func Completed(physicalID string, data map[string]string) Progress {
	return Progress{Done: true, PhysicalID: physicalID, Data: data}
}

// Phase derives the handler from the request type and the poll block.
func (r *Request) Phase() Phase {
	switch r.RequestType {
	case cfn.RequestCreate:
		if r.Poll != nil {
			return PhasePollCreate
		}
		return PhaseCreate
	case cfn.RequestUpdate:
		return PhaseUpdate
	case cfn.RequestDelete:
		return PhaseDelete
	default:
		return PhaseUnknown
	}
}

// Properties returns the resource properties accessor.
func (r *Request) Properties() Properties {
	return Properties(r.ResourceProperties)
}

// StackName extracts the stack name from the stack ARN.
// A plain name is returned unchanged.
func (r *Request) StackName() string {
	id := r.StackID
	if !strings.HasPrefix(id, "arn:") {
		return id
	}
	// arn:aws:cloudformation:<region>:<account>:stack/<name>/<guid>
	parts := strings.Split(id, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return id
}

// Scope is the state store scope owned by this resource.
func (r *Request) Scope() string {
	return statestore.Scope(r.StackName(), r.LogicalResourceID)
}
