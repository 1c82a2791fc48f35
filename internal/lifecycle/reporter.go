package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/util/retry"
)

// Result is the terminal outcome of one request.
type Result struct {
	Status     cfn.StatusType
	PhysicalID string
	Reason     string
	Data       map[string]string
}

// Success builds a SUCCESS result.
func Success(physicalID string, data map[string]string) Result {
	return Result{Status: cfn.StatusSuccess, PhysicalID: physicalID, Data: data}
}

// Failure builds a FAILED result carrying err as the reason.
func Failure(physicalID string, err error) Result {
	return Result{Status: cfn.StatusFailed, PhysicalID: physicalID, Reason: err.Error()}
}

// Reporter signals a terminal result back to the stack.
type Reporter interface {
	Report(ctx context.Context, req *Request, result Result) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, req *Request, result Result) error

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, req *Request, result Result) error {
	return f(ctx, req, result)
}

// HTTPReporter PUTs the response document to the presigned ResponseURL.
type HTTPReporter struct {
	client   *http.Client
	attempts int
	delay    time.Duration
}

// NewHTTPReporter returns a reporter using client, or a client with a
// 30 second timeout when nil.
func NewHTTPReporter(client *http.Client) *HTTPReporter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPReporter{client: client, attempts: 5, delay: 2 * time.Second}
}

// Report implements Reporter. Transport errors are retried; any status
// other than 200 is returned as an error straight away.
func (r *HTTPReporter) Report(ctx context.Context, req *Request, result Result) error {
	if req.ResponseURL == "" {
		return errors.New("request has no ResponseURL")
	}

	body, err := json.Marshal(NewResponse(req, result))
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	logr.FromContextOrDiscard(ctx).Info("Sending completion signal",
		"status", result.Status, "physicalId", physicalID(req, result), "reason", result.Reason)

	return retry.Do(ctx, func(ctx context.Context) error {
		return r.put(ctx, req.ResponseURL, body)
	}, retry.WithMaxRetries(r.attempts-1), retry.WithInitialDelay(r.delay))
}

func (r *HTTPReporter) put(ctx context.Context, url string, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return retry.Fatal(fmt.Errorf("failed to build response request: %w", err))
	}
	// The presigned URL is signed without a content type.
	httpReq.Header.Set("Content-Type", "")
	httpReq.ContentLength = int64(len(body))

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return retry.Fatal(fmt.Errorf("response endpoint returned %s", resp.Status))
	}
	return nil
}

// NewResponse builds the response document for req.
func NewResponse(req *Request, result Result) *cfn.Response {
	resp := &cfn.Response{
		Status:             result.Status,
		RequestID:          req.RequestID,
		LogicalResourceID:  req.LogicalResourceID,
		StackID:            req.StackID,
		PhysicalResourceID: physicalID(req, result),
		Reason:             result.Reason,
	}
	if resp.Status == cfn.StatusFailed && resp.Reason == "" {
		resp.Reason = "See the details in CloudWatch Log Stream: " + lambdacontext.LogStreamName
	}
	if len(result.Data) > 0 {
		resp.Data = make(map[string]interface{}, len(result.Data))
		for k, v := range result.Data {
			resp.Data[k] = v
		}
	}
	return resp
}

// physicalID picks the id to report: the result's, the poll data's, the
// request's, then the log stream name. CloudFormation rejects an empty id.
func physicalID(req *Request, result Result) string {
	switch {
	case result.PhysicalID != "":
		return result.PhysicalID
	case req.PhysicalResourceID != "":
		return req.PhysicalResourceID
	case req.Poll != nil && req.Poll.Data.PhysicalID != "":
		return req.Poll.Data.PhysicalID
	case lambdacontext.LogStreamName != "":
		return lambdacontext.LogStreamName
	default:
		return req.RequestID
	}
}
