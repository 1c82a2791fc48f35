package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/lexkendra/lexkendra/internal/platform/awsclient"
)

// Scheduler arranges for a pending request to be handled again.
type Scheduler interface {
	// Start attaches the poll block to req and schedules the first poll.
	Start(ctx context.Context, req *Request, data PollData) error

	// Continue schedules the next poll of a still pending request.
	Continue(ctx context.Context, req *Request) error

	// Stop releases whatever Start set up. Called once the request is terminal.
	Stop(ctx context.Context, req *Request) error
}

// EventBridgeAPI is the subset of the EventBridge client used for repolling.
type EventBridgeAPI interface {
	PutRule(ctx context.Context, in *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error)
	PutTargets(ctx context.Context, in *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error)
	RemoveTargets(ctx context.Context, in *eventbridge.RemoveTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.RemoveTargetsOutput, error)
	DeleteRule(ctx context.Context, in *eventbridge.DeleteRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.DeleteRuleOutput, error)
}

// PermissionAPI is the subset of the Lambda client used to let a rule
// invoke the function.
type PermissionAPI interface {
	AddPermission(ctx context.Context, in *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error)
	RemovePermission(ctx context.Context, in *lambda.RemovePermissionInput, optFns ...func(*lambda.Options)) (*lambda.RemovePermissionOutput, error)
}

// InvokeAPI is the subset of the Lambda client used for self-invocation.
type InvokeAPI interface {
	Invoke(ctx context.Context, in *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

const pollTargetID = "1"

// RuleScheduler repolls through a scheduled EventBridge rule that targets
// the function with the request as its input.
type RuleScheduler struct {
	events      EventBridgeAPI
	permissions PermissionAPI
	functionARN string
	interval    time.Duration
}

// NewRuleScheduler returns a scheduler creating one rule per request.
// functionARN is used when the invocation context carries none.
func NewRuleScheduler(events EventBridgeAPI, permissions PermissionAPI, functionARN string, interval time.Duration) *RuleScheduler {
	return &RuleScheduler{events: events, permissions: permissions, functionARN: functionARN, interval: interval}
}

// Start implements Scheduler.
func (s *RuleScheduler) Start(ctx context.Context, req *Request, data PollData) error {
	fn := functionARN(ctx, s.functionARN)
	if fn == "" {
		return errors.New("cannot schedule polling: function ARN is unknown")
	}

	id := uuid.NewString()
	req.Poll = &PollState{
		Data:        data,
		RuleName:    "lexkendra-poll-" + id,
		StatementID: id,
	}

	rule, err := s.events.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(req.Poll.RuleName),
		ScheduleExpression: aws.String(rateExpression(s.interval)),
		State:              ebtypes.RuleStateEnabled,
		Description:        aws.String(fmt.Sprintf("Polls %s for request %s", req.LogicalResourceID, req.RequestID)),
	})
	if err != nil {
		return fmt.Errorf("failed to create poll rule: %w", err)
	}

	_, err = s.permissions.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(fn),
		StatementId:  aws.String(req.Poll.StatementID),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String("events.amazonaws.com"),
		SourceArn:    rule.RuleArn,
	})
	if err != nil {
		return fmt.Errorf("failed to grant poll rule invoke permission: %w", err)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode poll input: %w", err)
	}
	out, err := s.events.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule: aws.String(req.Poll.RuleName),
		Targets: []ebtypes.Target{{
			Id:    aws.String(pollTargetID),
			Arn:   aws.String(fn),
			Input: aws.String(string(input)),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to attach poll target: %w", err)
	}
	if len(out.FailedEntries) > 0 {
		return fmt.Errorf("failed to attach poll target: %s", aws.ToString(out.FailedEntries[0].ErrorMessage))
	}

	logr.FromContextOrDiscard(ctx).Info("Scheduled polling", "rule", req.Poll.RuleName, "interval", s.interval)
	return nil
}

// Continue implements Scheduler. The rule keeps firing on its own.
func (s *RuleScheduler) Continue(context.Context, *Request) error {
	return nil
}

// Stop implements Scheduler. Resources that are already gone are ignored.
func (s *RuleScheduler) Stop(ctx context.Context, req *Request) error {
	if req.Poll == nil || req.Poll.RuleName == "" {
		return nil
	}
	var errs []error

	_, err := s.events.RemoveTargets(ctx, &eventbridge.RemoveTargetsInput{
		Rule: aws.String(req.Poll.RuleName),
		Ids:  []string{pollTargetID},
	})
	if err != nil && !awsclient.IsNotFound(err) {
		errs = append(errs, fmt.Errorf("failed to remove poll target: %w", err))
	}

	_, err = s.events.DeleteRule(ctx, &eventbridge.DeleteRuleInput{Name: aws.String(req.Poll.RuleName)})
	if err != nil && !awsclient.IsNotFound(err) {
		errs = append(errs, fmt.Errorf("failed to delete poll rule: %w", err))
	}

	if fn := functionARN(ctx, s.functionARN); fn != "" && req.Poll.StatementID != "" {
		_, err = s.permissions.RemovePermission(ctx, &lambda.RemovePermissionInput{
			FunctionName: aws.String(fn),
			StatementId:  aws.String(req.Poll.StatementID),
		})
		if err != nil && !awsclient.IsNotFound(err) {
			errs = append(errs, fmt.Errorf("failed to remove poll permission: %w", err))
		}
	}

	return errors.Join(errs...)
}

// InvokeScheduler repolls by sleeping and then invoking the function
// asynchronously with the request as payload. It is the fallback for
// deployments where a scheduled rule cannot be created.
type InvokeScheduler struct {
	api         InvokeAPI
	functionARN string
	interval    time.Duration
	sleep       func(context.Context, time.Duration) error
}

// NewInvokeScheduler returns a self-invoking scheduler.
func NewInvokeScheduler(api InvokeAPI, functionARN string, interval time.Duration) *InvokeScheduler {
	return &InvokeScheduler{api: api, functionARN: functionARN, interval: interval, sleep: Sleep}
}

// Start implements Scheduler.
func (s *InvokeScheduler) Start(ctx context.Context, req *Request, data PollData) error {
	req.Poll = &PollState{Data: data}
	return s.Continue(ctx, req)
}

// Continue implements Scheduler.
func (s *InvokeScheduler) Continue(ctx context.Context, req *Request) error {
	fn := functionARN(ctx, s.functionARN)
	if fn == "" {
		return errors.New("cannot schedule polling: function ARN is unknown")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode poll payload: %w", err)
	}
	if err := s.sleep(ctx, s.interval); err != nil {
		return err
	}
	_, err = s.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(fn),
		InvocationType: lambdatypes.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("failed to re-invoke %s: %w", fn, err)
	}
	return nil
}

// Stop implements Scheduler.
func (s *InvokeScheduler) Stop(context.Context, *Request) error {
	return nil
}

// LoopScheduler records the next poll for an in-process caller that
// drives the machine itself.
type LoopScheduler struct {
	mu   sync.Mutex
	next *Request
}

// Start implements Scheduler.
func (s *LoopScheduler) Start(_ context.Context, req *Request, data PollData) error {
	req.Poll = &PollState{Data: data}
	s.set(req)
	return nil
}

// Continue implements Scheduler.
func (s *LoopScheduler) Continue(_ context.Context, req *Request) error {
	s.set(req)
	return nil
}

// Stop implements Scheduler.
func (s *LoopScheduler) Stop(context.Context, *Request) error {
	s.set(nil)
	return nil
}

// Next returns the request to handle next, if any, and clears it.
func (s *LoopScheduler) Next() (*Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.next
	s.next = nil
	return next, next != nil
}

func (s *LoopScheduler) set(req *Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = req
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func functionARN(ctx context.Context, fallback string) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.InvokedFunctionArn != "" {
		return lc.InvokedFunctionArn
	}
	return fallback
}

// rateExpression renders an EventBridge rate() schedule with minute
// granularity, the smallest unit rules accept.
func rateExpression(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	if minutes == 1 {
		return "rate(1 minute)"
	}
	return fmt.Sprintf("rate(%d minutes)", minutes)
}
