package dispatcher

import (
	"github.com/goliatone/go-lifecycle"
	"github.com/goliatone/go-lifecycle/metrics"
	"github.com/goliatone/go-lifecycle/scheduler"
)

// Option defines the functional option signature.
type Option func(*Dispatcher)

// WithScheduler sets the continuation scheduler. Without one, IN_PROGRESS
// results fail closed as internal failures.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(d *Dispatcher) {
		d.sched = s
	}
}

// WithPublisher sets the metrics collaborator.
func WithPublisher(p metrics.Publisher) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.publisher = p
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l lifecycle.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = lifecycle.NormalizeLogger(l)
	}
}

// WithLocalMode disables metrics publication for local runs.
func WithLocalMode(local bool) Option {
	return func(d *Dispatcher) {
		d.localMode = local
	}
}

// WithConfig applies the runtime config's local-mode flag.
func WithConfig(cfg lifecycle.Config) Option {
	return func(d *Dispatcher) {
		d.localMode = cfg.LocalMode
	}
}
