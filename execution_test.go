package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
)

func TestFixedExecutionContext(t *testing.T) {
	ec := FixedExecutionContext{Remaining: 9 * time.Second, Identity: "arn:aws:lambda:us-west-2:123412341234:function:my-function"}
	assert.EqualValues(t, 9000, ec.RemainingTimeMillis())
	assert.Equal(t, "arn:aws:lambda:us-west-2:123412341234:function:my-function", ec.InvocationIdentity())
}

func TestExecutionContextFromDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ec := NewExecutionContext(ctx)
	remaining := ec.RemainingTimeMillis()
	assert.Greater(t, remaining, int64(0))
	assert.LessOrEqual(t, remaining, int64(5000))
}

func TestExecutionContextRemainingDecreases(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ec := NewExecutionContext(ctx)
	first := ec.RemainingTimeMillis()
	time.Sleep(20 * time.Millisecond)
	assert.Less(t, ec.RemainingTimeMillis(), first)
}

func TestExecutionContextWithoutDeadline(t *testing.T) {
	ec := NewExecutionContext(context.Background())
	assert.Greater(t, ec.RemainingTimeMillis(), int64(0))
	assert.Empty(t, ec.InvocationIdentity())
}

func TestExecutionContextIdentityFromLambdaContext(t *testing.T) {
	lc := &lambdacontext.LambdaContext{InvokedFunctionArn: "arn:aws:lambda:us-west-2:123412341234:function:my-function"}
	ctx := lambdacontext.NewContext(context.Background(), lc)

	ec := NewExecutionContext(ctx)
	assert.Equal(t, lc.InvokedFunctionArn, ec.InvocationIdentity())
}
