// Package metrics defines the telemetry collaborator the dispatcher publishes
// to after every invocation. Publication sits on the critical path: a publish
// failure fails the whole invocation rather than being dropped silently.
package metrics

import (
	"context"
	"time"

	"github.com/goliatone/go-lifecycle"
)

// Publisher records the outcome of one handler invocation.
type Publisher interface {
	Publish(ctx context.Context, action lifecycle.Action, status lifecycle.Status, duration time.Duration) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, action lifecycle.Action, status lifecycle.Status, duration time.Duration) error

// Publish calls the underlying function.
func (f PublisherFunc) Publish(ctx context.Context, action lifecycle.Action, status lifecycle.Status, duration time.Duration) error {
	return f(ctx, action, status, duration)
}

// Nop discards every measurement. Used in local mode.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, lifecycle.Action, lifecycle.Status, time.Duration) error {
	return nil
}
