package lifecycle

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Phase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want Phase
	}{
		{name: "create", req: Request{Event: cfn.Event{RequestType: cfn.RequestCreate}}, want: PhaseCreate},
		{name: "poll create", req: Request{Event: cfn.Event{RequestType: cfn.RequestCreate}, Poll: &PollState{}}, want: PhasePollCreate},
		{name: "update", req: Request{Event: cfn.Event{RequestType: cfn.RequestUpdate}}, want: PhaseUpdate},
		{name: "delete", req: Request{Event: cfn.Event{RequestType: cfn.RequestDelete}}, want: PhaseDelete},
		{name: "unknown", req: Request{Event: cfn.Event{RequestType: "Replace"}}, want: PhaseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.req.Phase())
		})
	}
}

func TestRequest_StackNameAndScope(t *testing.T) {
	t.Parallel()

	req := Request{Event: cfn.Event{
		StackID:           "arn:aws:cloudformation:us-east-1:123456789012:stack/chatbot/2f1c9a70-0000-11ee-8c2b-0a1b2c3d4e5f",
		LogicalResourceID: "KendraIndex",
	}}
	assert.Equal(t, "chatbot", req.StackName())
	assert.Equal(t, "stacks/chatbot/KendraIndex", req.Scope())

	plain := Request{Event: cfn.Event{StackID: "local-stack"}}
	assert.Equal(t, "local-stack", plain.StackName())
}

func TestRequest_JSONRoundTripKeepsPollBlock(t *testing.T) {
	t.Parallel()

	raw := `{
		"RequestType": "Create",
		"RequestId": "req-1",
		"StackId": "stack",
		"LogicalResourceId": "Bot",
		"ResponseURL": "https://example.invalid/response",
		"ResourceProperties": {"Name": "faq-idx"},
		"LexKendraPoll": {"data": {"physicalId": "idx-1", "values": {"KendraIndexId": "idx-1"}}, "ruleName": "r"}
	}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, PhasePollCreate, req.Phase())
	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "idx-1", req.Poll.Data.PhysicalID)
	assert.Equal(t, "faq-idx", req.Properties().String("Name"))

	out, err := json.Marshal(&req)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"LexKendraPoll"`)
	assert.Contains(t, string(out), `"RequestId":"req-1"`)
}
