// Package retry re-runs remote calls that fail transiently.
//
// [Do] retries an operation with a configurable number of retries, delay
// and backoff multiplier. Remote services used during provisioning reject
// calls issued right after a dependency changes state, so callers mostly
// use [Once] (one retry after a fixed pause) and narrow the retried errors
// with [WithRetryIf].
package retry
