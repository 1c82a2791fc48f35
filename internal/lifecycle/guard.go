package lifecycle

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/go-logr/logr"
)

// StackAPI is the subset of the CloudFormation client used by UpdateGuard.
type StackAPI interface {
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// UpdateGuard implements the update phase shared by every provisioner:
// updates are rejected while the stack is updating, and the previous
// physical id is kept while it rolls back.
type UpdateGuard struct {
	api StackAPI
}

// NewUpdateGuard returns a guard that inspects stacks through api.
func NewUpdateGuard(api StackAPI) *UpdateGuard {
	return &UpdateGuard{api: api}
}

// Check returns the physical id to report for an update request.
func (g *UpdateGuard) Check(ctx context.Context, req *Request) (string, error) {
	out, err := g.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(req.StackID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe stack %s: %w", req.StackName(), err)
	}
	if len(out.Stacks) == 0 {
		return "", fmt.Errorf("stack %s not found", req.StackName())
	}

	status := out.Stacks[0].StackStatus
	logr.FromContextOrDiscard(ctx).Info("Update requested", "stack", req.StackName(), "stackStatus", status)
	if status == cftypes.StackStatusUpdateInProgress {
		return "", fmt.Errorf("%w for %s", ErrUpdatesNotSupported, req.LogicalResourceID)
	}
	return req.PhysicalResourceID, nil
}
