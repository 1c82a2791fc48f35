// Package statestore persists the small amount of state that has to survive
// between invocations of a provisioning handler: remote resource ids and the
// bounded poll counter.
//
// Values are plain strings addressed by slash-separated keys. Backends are
// SSM Parameter Store ([ParameterStore]), S3 JSON objects ([ObjectStore])
// and an in-process map ([Memory]) for local runs and tests.
package statestore

import (
	"context"
	"errors"
	"path"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("state not found")

// Store reads and writes string values by key.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Scope identifies the state of one custom resource within one stack.
func Scope(stackName, logicalID string) string {
	return path.Join("stacks", stackName, logicalID)
}

// IndexIDKey stores the Kendra index id created for a scope.
func IndexIDKey(scope string) string {
	return path.Join(scope, "index-id")
}

// DataSourceIDKey stores the data source id created for a scope.
func DataSourceIDKey(scope string) string {
	return path.Join(scope, "data-source-id")
}

// FAQIDKey stores the FAQ id created for a scope.
func FAQIDKey(scope string) string {
	return path.Join(scope, "faq-id")
}

// PollCountKey stores the poll counter of one provisioning attempt.
func PollCountKey(scope, requestID string) string {
	return path.Join(scope, requestID, "poll-count")
}
