package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle"
)

// OTelPublisher publishes invocation outcomes through an OpenTelemetry meter:
// a counter per action/status plus a duration histogram.
type OTelPublisher struct {
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewOTelPublisher builds a publisher on the provided meter, falling back to
// the global meter provider when meter is nil. namespace prefixes the
// instrument names.
func NewOTelPublisher(meter metric.Meter, namespace string) (*OTelPublisher, error) {
	if namespace == "" {
		namespace = "lifecycle"
	}
	if meter == nil {
		meter = otel.GetMeterProvider().Meter("github.com/goliatone/go-lifecycle/metrics")
	}

	invocations, err := meter.Int64Counter(
		namespace+".handler.invocations",
		metric.WithDescription("Handler invocations by action and status"),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "create invocation counter").
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	duration, err := meter.Float64Histogram(
		namespace+".handler.duration",
		metric.WithDescription("Handler invocation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "create duration histogram").
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	return &OTelPublisher{invocations: invocations, duration: duration}, nil
}

// Publish implements Publisher.
func (p *OTelPublisher) Publish(ctx context.Context, action lifecycle.Action, status lifecycle.Status, duration time.Duration) error {
	attrs := metric.WithAttributes(
		attribute.String("action", action.String()),
		attribute.String("status", string(status)),
	)
	p.invocations.Add(ctx, 1, attrs)
	p.duration.Record(ctx, float64(duration.Milliseconds()), attrs)
	return nil
}
