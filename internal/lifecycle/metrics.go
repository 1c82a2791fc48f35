package lifecycle

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds the provisioning metrics. Lambda invocations are short
// lived, so the registry is pushed rather than scraped.
var Registry = prometheus.NewRegistry()

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexkendra",
			Subsystem: "lifecycle",
			Name:      "requests_total",
			Help:      "Total number of handled requests by resource, phase and outcome",
		},
		[]string{"resource", "phase", "outcome"},
	)

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexkendra",
			Subsystem: "lifecycle",
			Name:      "phase_duration_seconds",
			Help:      "Duration of phase handlers in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
		},
		[]string{"resource", "phase"},
	)

	pollAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexkendra",
			Subsystem: "lifecycle",
			Name:      "poll_attempts",
			Help:      "Number of pending polls before a request became terminal",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		},
		[]string{"resource"},
	)
)

func init() {
	Registry.MustRegister(requestsTotal, phaseDuration, pollAttempts)
}

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
	outcomePending = "pending"
)

func recordPhaseMetric(resource string, phase Phase, outcome string, seconds float64) {
	requestsTotal.WithLabelValues(resource, phase.String(), outcome).Inc()
	phaseDuration.WithLabelValues(resource, phase.String()).Observe(seconds)
}

func recordPollAttemptsMetric(resource string, attempts int) {
	pollAttempts.WithLabelValues(resource).Observe(float64(attempts))
}

// PushMetrics sends the registry to a Pushgateway under job.
// An empty url disables pushing.
func PushMetrics(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
