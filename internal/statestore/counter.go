package statestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Counter is a persistent integer counter on top of a Store.
// A missing key counts as zero.
type Counter struct {
	store Store
}

// NewCounter returns a counter persisted in store.
func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// Value returns the current count stored under key.
func (c *Counter) Value(ctx context.Context, key string) (int, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds non-numeric value %q", key, raw)
	}
	return n, nil
}

// Increment adds one to the counter and returns the new count.
func (c *Counter) Increment(ctx context.Context, key string) (int, error) {
	n, err := c.Value(ctx, key)
	if err != nil {
		return 0, err
	}
	n++
	if err := c.store.Put(ctx, key, strconv.Itoa(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes the counter.
func (c *Counter) Clear(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}
