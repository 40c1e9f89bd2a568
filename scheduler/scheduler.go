// Package scheduler decides how an IN_PROGRESS operation gets its next
// invocation: by waiting out a short delay in process when the execution
// budget comfortably covers it, or by registering a one-shot continuation with
// an external backend and letting the current execution end.
package scheduler

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle"
)

// Continuation is the registration handed to a Backend: everything a future
// delivery needs to resume the logical operation.
type Continuation struct {
	// TargetIdentity names the execution environment to re-invoke, derived
	// from the current invocation's identity.
	TargetIdentity string

	// Delay is the minimum time before redelivery.
	Delay time.Duration

	// CallbackContext is the state the next step resumes from.
	CallbackContext lifecycle.CallbackContext

	// Invocation is the incremented delivery counter.
	Invocation int

	// Request is the full next-step request to redeliver.
	Request lifecycle.Request
}

// Backend registers continuations with whatever triggers future invocations.
// Registration is append-only and fire-and-forget: failure surfaces
// synchronously, success is not awaited further.
type Backend interface {
	RegisterContinuation(ctx context.Context, c Continuation) error
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, c Continuation) error

// RegisterContinuation calls the underlying function.
func (f BackendFunc) RegisterContinuation(ctx context.Context, c Continuation) error {
	return f(ctx, c)
}

// Decision reports which continuation path Reschedule took.
type Decision int

const (
	// DecisionScheduled means an external continuation was registered and the
	// current execution should end with IN_PROGRESS.
	DecisionScheduled Decision = iota

	// DecisionWaited means the delay elapsed in process and the caller should
	// re-invoke the handler directly.
	DecisionWaited
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSafetyMargin sets the budget subtracted from remaining time before the
// scheduler considers an in-process wait.
func WithSafetyMargin(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.safetyMargin = d
		}
	}
}

// WithMaxInProcessWait caps how long the scheduler will wait in process.
func WithMaxInProcessWait(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.maxWait = d
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l lifecycle.Logger) Option {
	return func(s *Scheduler) {
		s.logger = lifecycle.NormalizeLogger(l)
	}
}

// WithSleep replaces the wait primitive. Tests use this to avoid real sleeps.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Scheduler applies the continuation policy against the execution budget.
type Scheduler struct {
	backend      Backend
	safetyMargin time.Duration
	maxWait      time.Duration
	logger       lifecycle.Logger
	sleep        func(context.Context, time.Duration) error
}

// New builds a Scheduler over the given backend.
func New(backend Backend, opts ...Option) *Scheduler {
	s := &Scheduler{
		backend:      backend,
		safetyMargin: 30 * time.Second,
		maxWait:      time.Minute,
		logger:       lifecycle.NewFmtLogger(nil),
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// FromConfig builds a Scheduler with policy knobs taken from cfg.
func FromConfig(backend Backend, cfg lifecycle.Config, opts ...Option) *Scheduler {
	base := []Option{
		WithSafetyMargin(time.Duration(cfg.SafetyMarginSeconds) * time.Second),
		WithMaxInProcessWait(time.Duration(cfg.MaxInProcessWaitSeconds) * time.Second),
	}
	return New(backend, append(base, opts...)...)
}

// Reschedule guarantees a future delivery for the continuation request. It
// waits in process only when the remaining budget minus the safety margin
// comfortably covers the delay; otherwise it registers an external trigger and
// returns without waiting. It never blocks past the host's remaining budget.
func (s *Scheduler) Reschedule(ctx context.Context, delayMinutes int, next lifecycle.Request, ec lifecycle.ExecutionContext) (Decision, error) {
	if s == nil || s.backend == nil {
		return DecisionScheduled, errors.New("no continuation backend configured", errors.CategoryConflict).
			WithTextCode(lifecycle.CodeInternalFailure)
	}
	if ec == nil {
		return DecisionScheduled, errors.New("no execution context for rescheduling", errors.CategoryBadInput).
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	if delayMinutes < 0 {
		delayMinutes = 0
	}
	delay := time.Duration(delayMinutes) * time.Minute

	// Remaining time shrinks while we run, so it is read here, never cached.
	remaining := time.Duration(ec.RemainingTimeMillis()) * time.Millisecond
	budget := remaining - s.safetyMargin

	if delay <= s.maxWait && delay < budget {
		s.logger.Debug("waiting in process before next step",
			"delay", delay.String(), "remaining", remaining.String())
		if err := s.sleep(ctx, delay); err != nil {
			return DecisionScheduled, errors.Wrap(err, errors.CategoryOperation, "in-process wait interrupted").
				WithTextCode(lifecycle.CodeInternalFailure)
		}
		return DecisionWaited, nil
	}

	cont := Continuation{
		TargetIdentity:  ec.InvocationIdentity(),
		Delay:           delay,
		CallbackContext: next.CallbackContext(),
		Invocation:      next.Invocation(),
		Request:         next,
	}

	if err := s.backend.RegisterContinuation(ctx, cont); err != nil {
		if lifecycle.IsTaxonomy(err) {
			return DecisionScheduled, err
		}
		return DecisionScheduled, errors.Wrap(err, errors.CategoryExternal, "continuation registration failed").
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	s.logger.Info("registered external continuation",
		"target", cont.TargetIdentity, "delay", delay.String(), "invocation", cont.Invocation)
	return DecisionScheduled, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
