package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/lifecycle"
)

// sleep waits between local polls - can be replaced in tests.
var sleep = lifecycle.Sleep

// InvokeOptions configures a local run.
type InvokeOptions struct {
	ConfigPath string
	Resource   string
	EventPath  string
	// PollInterval overrides the configured polling interval when positive.
	PollInterval time.Duration
}

// Invoke runs a custom resource event through the state machine in
// process, repolling until the request is terminal. The completion report
// is sent to the event's ResponseURL when it has one and printed otherwise.
func Invoke(ctx context.Context, opts InvokeOptions) (*lifecycle.Result, error) {
	// #nosec G304
	data, err := os.ReadFile(opts.EventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	var req lifecycle.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse event file: %w", err)
	}

	rt, err := newRuntime(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	ctx = logr.NewContext(ctx, rt.logger)

	var result *lifecycle.Result
	reporter := lifecycle.ReporterFunc(func(ctx context.Context, req *lifecycle.Request, res lifecycle.Result) error {
		result = &res
		if req.ResponseURL == "" {
			return nil
		}
		return newReporter().Report(ctx, req, res)
	})

	scheduler := &lifecycle.LoopScheduler{}
	m, err := rt.machine(opts.Resource, rt.store(), reporter, scheduler)
	if err != nil {
		return nil, err
	}

	interval := rt.cfg.Polling.Interval
	if opts.PollInterval > 0 {
		interval = opts.PollInterval
	}

	log.Printf("Running %s request for %s (%s)", req.RequestType, req.LogicalResourceID, opts.Resource)
	if err := m.Handle(ctx, &req); err != nil {
		return result, err
	}
	for attempt := 1; ; attempt++ {
		next, ok := scheduler.Next()
		if !ok {
			break
		}
		log.Printf("Still in progress, polling again in %s (attempt %d)", interval, attempt)
		if err := sleep(ctx, interval); err != nil {
			return result, err
		}
		if err := m.Handle(ctx, next); err != nil {
			return result, err
		}
	}

	if result == nil {
		return nil, fmt.Errorf("request finished without a result")
	}
	log.Printf("Finished: %s %s", result.Status, result.PhysicalID)
	if result.Reason != "" {
		log.Printf("Reason: %s", result.Reason)
	}
	for k, v := range result.Data {
		log.Printf("  %s = %s", k, v)
	}
	return result, nil
}
