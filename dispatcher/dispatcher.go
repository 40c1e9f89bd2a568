// Package dispatcher is the stateless control loop that turns a sequence of
// short, isolated invocations into one logical long-running operation. It
// resolves the handler for a request's action, interprets the resulting
// ProgressEvent, arranges continuations for in-progress work, and collapses
// every exit path into a well formed event so the boundary stays a one-line
// serializer.
package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/metrics"
	"github.com/goliatone/go-lifecycle/scheduler"
)

// Dispatcher orchestrates a single inbound invocation. Construct one per
// delivery; instances hold no state that survives the call.
type Dispatcher struct {
	req       lifecycle.Request
	ec        lifecycle.ExecutionContext
	registry  *lifecycle.Registry
	sched     *scheduler.Scheduler
	publisher metrics.Publisher
	logger    lifecycle.Logger
	localMode bool
}

// New builds a Dispatcher for one request. The registry is required; the
// remaining collaborators default to a nop publisher, no scheduler, and the
// fallback logger.
func New(req lifecycle.Request, ec lifecycle.ExecutionContext, registry *lifecycle.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		req:       req,
		ec:        ec,
		registry:  registry,
		publisher: metrics.Nop{},
		logger:    lifecycle.NewFmtLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Run executes the invocation end to end and always returns a well formed
// ProgressEvent. It never panics and never lets a failure escape unshaped:
// resolver misses, handler failures, reschedule failures, and metrics
// failures all collapse into FAILED events.
func (d *Dispatcher) Run(ctx context.Context) lifecycle.ProgressEvent {
	started := time.Now()

	action, err := d.req.Action()
	if err != nil {
		// Fails closed before any handler runs; no metrics either.
		return lifecycle.FailedFrom(err)
	}

	log := lifecycle.WithLoggerFields(d.logger, map[string]any{
		"action":     action.String(),
		"resource":   d.req.ResourceType,
		"invocation": d.req.Invocation(),
	})

	handler, err := d.registry.Resolve(action)
	if err != nil {
		// A resolution miss is a deployment defect, not handler business
		// logic: short-circuit without invoking anything or publishing.
		log.Error("handler resolution failed", "error", err)
		return lifecycle.FailedFrom(err)
	}

	req := d.req
	event := d.invoke(ctx, handler, req)

	// An IN_PROGRESS event obligates us to guarantee the next delivery. The
	// scheduler either waits out short delays here, in which case the handler
	// resumes directly, or registers an external trigger and the event is
	// final for this invocation.
	for event.Status == lifecycle.StatusInProgress {
		if d.sched == nil {
			log.Error("in-progress result with no continuation path")
			event = lifecycle.FailedFrom(
				errors.New("in-progress result with no schedulable continuation", errors.CategoryConflict).
					WithTextCode(lifecycle.CodeInternalFailure))
			break
		}

		next := req.WithContinuation(event.CallbackContext)
		decision, err := d.sched.Reschedule(ctx, event.CallbackDelayMinutes, next, d.ec)
		if err != nil {
			log.Error("rescheduling failed", "error", err)
			event = lifecycle.FailedFrom(err)
			break
		}
		if decision == scheduler.DecisionScheduled {
			break
		}

		req = next
		event = d.invoke(ctx, handler, req)
	}

	// Publishing is on the critical path: a metrics failure overrides even a
	// successful handler result. Local runs have no telemetry endpoint, so
	// publication is skipped entirely.
	if !d.localMode {
		if err := d.safePublish(ctx, action, event.Status, time.Since(started)); err != nil {
			log.Error("metrics publication failed", "error", err)
			event = lifecycle.FailedFrom(err)
		}
	}

	log.Info("invocation complete", "status", string(event.Status))
	return event
}

// invoke calls the handler with any failure, including panics, contained and
// normalized into a FAILED event.
func (d *Dispatcher) invoke(ctx context.Context, handler lifecycle.HandlerFunc, req lifecycle.Request) (event lifecycle.ProgressEvent) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 8096)
			stack = stack[:runtime.Stack(stack, false)]
			d.logger.Error("recovered from handler panic", "panic", r, "stack", string(stack))
			event = lifecycle.FailedFrom(panicError{value: r})
		}
	}()

	result, err := handler(ctx, req, d.ec)
	if err != nil {
		return lifecycle.FailedFrom(err)
	}
	return sanitize(result)
}

// sanitize enforces the ProgressEvent invariants on handler output: the
// status must be one of the three wire values and a FAILED event must carry a
// taxonomy code.
func sanitize(event lifecycle.ProgressEvent) lifecycle.ProgressEvent {
	if !event.Status.Valid() {
		return lifecycle.FailedFrom(
			errors.New("handler returned event without a valid status", errors.CategoryHandler).
				WithTextCode(lifecycle.CodeInternalFailure))
	}
	if event.Status == lifecycle.StatusFailed && event.ErrorCode == "" {
		return lifecycle.Failed(lifecycle.CodeInternalFailure, "InternalFailure: "+event.Message)
	}
	return event
}

func (d *Dispatcher) safePublish(ctx context.Context, action lifecycle.Action, status lifecycle.Status, duration time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	if d.publisher == nil {
		return nil
	}
	return d.publisher.Publish(ctx, action, status, duration)
}

// panicError carries a recovered panic value as an error so it flows through
// the same normalization as any other failure.
type panicError struct {
	value any
}

func (e panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", e.value)
}
