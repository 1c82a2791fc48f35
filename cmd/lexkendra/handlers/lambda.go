package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/answer"
	"github.com/lexkendra/lexkendra/internal/config"
	"github.com/lexkendra/lexkendra/internal/lifecycle"
)

// startLambda hands the handler to the Lambda runtime. It does not return
// in a real function environment.
var startLambda = func(handler any) {
	lambda.Start(handler)
}

// Lambda serves resource from the Lambda runtime.
func Lambda(ctx context.Context, configPath, resource string) error {
	rt, err := newRuntime(ctx, configPath)
	if err != nil {
		return err
	}
	store := rt.store()

	if resource == ResourceAnswer {
		startLambda(fulfillmentHandler(rt.answerHandler(store, ""), rt.logger))
		return nil
	}

	m, err := rt.machine(resource, store, newReporter(), rt.scheduler())
	if err != nil {
		return err
	}
	rt.logger.Info("Starting Lambda handler", "resource", resource, "pollingMode", rt.cfg.Polling.Mode)
	startLambda(provisioningHandler(m, rt.logger, rt.cfg.Metrics))
	return nil
}

func provisioningHandler(m *lifecycle.Machine, logger logr.Logger, metrics config.MetricsConfig) func(context.Context, lifecycle.Request) error {
	return func(ctx context.Context, req lifecycle.Request) error {
		ctx = logr.NewContext(ctx, logger)
		err := m.Handle(ctx, &req)
		if perr := lifecycle.PushMetrics(ctx, metrics.PushGatewayURL, metrics.Job); perr != nil {
			logger.Error(perr, "Failed to push metrics")
		}
		return err
	}
}

func fulfillmentHandler(h *answer.Handler, logger logr.Logger) func(context.Context, answer.FulfillmentRequest) (*events.LexResponse, error) {
	return func(ctx context.Context, req answer.FulfillmentRequest) (*events.LexResponse, error) {
		return h.Handle(logr.NewContext(ctx, logger), &req)
	}
}
