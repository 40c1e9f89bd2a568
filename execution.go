package lifecycle

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// ExecutionContext exposes the host's view of the current invocation: how much
// execution time remains and an identity to derive continuation targets from.
// Remaining time decreases while the invocation runs, so callers must query it
// rather than cache it.
type ExecutionContext interface {
	RemainingTimeMillis() int64
	InvocationIdentity() string
}

type lambdaExecutionContext struct {
	deadline time.Time
	identity string
}

// NewExecutionContext derives an ExecutionContext from a Lambda style
// invocation context: the remaining budget comes from the context deadline and
// the identity from the invoked function ARN when one is present.
func NewExecutionContext(ctx context.Context) ExecutionContext {
	ec := &lambdaExecutionContext{}
	if deadline, ok := ctx.Deadline(); ok {
		ec.deadline = deadline
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ec.identity = lc.InvokedFunctionArn
	}
	return ec
}

func (e *lambdaExecutionContext) RemainingTimeMillis() int64 {
	if e.deadline.IsZero() {
		// No deadline means the host imposes no budget; treat it as ample.
		return int64(15 * time.Minute / time.Millisecond)
	}
	remaining := time.Until(e.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining.Milliseconds()
}

func (e *lambdaExecutionContext) InvocationIdentity() string {
	return e.identity
}

// FixedExecutionContext is a static ExecutionContext for local runs and tests.
type FixedExecutionContext struct {
	Remaining time.Duration
	Identity  string
}

func (f FixedExecutionContext) RemainingTimeMillis() int64 {
	return f.Remaining.Milliseconds()
}

func (f FixedExecutionContext) InvocationIdentity() string {
	return f.Identity
}
