package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	rcron "github.com/robfig/cron/v3"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-lifecycle"
)

// DeliverFunc redelivers a continuation to the entry boundary.
type DeliverFunc func(ctx context.Context, c Continuation) error

// CronBackend is the local continuation backend: it arranges one-shot
// redelivery inside the current process through a cron runner. It exists for
// local mode and tests, where no external trigger service is reachable.
type CronBackend struct {
	mu      sync.Mutex
	cron    *rcron.Cron
	deliver DeliverFunc
	logger  lifecycle.Logger
	entries map[string]rcron.EntryID
	started bool
}

// CronOption configures a CronBackend.
type CronOption func(*CronBackend)

// WithCronLogger sets the backend logger.
func WithCronLogger(l lifecycle.Logger) CronOption {
	return func(b *CronBackend) {
		b.logger = lifecycle.NormalizeLogger(l)
	}
}

// NewCronBackend builds a local backend that hands each due continuation to
// deliver exactly once.
func NewCronBackend(deliver DeliverFunc, opts ...CronOption) *CronBackend {
	b := &CronBackend{
		cron:    rcron.New(rcron.WithSeconds()),
		deliver: deliver,
		logger:  lifecycle.NewFmtLogger(nil),
		entries: make(map[string]rcron.EntryID),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Start begins running due continuations.
func (b *CronBackend) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		b.cron.Start()
		b.started = true
	}
	return nil
}

// Stop stops redelivery and drops pending registrations.
func (b *CronBackend) Stop(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.cron.Stop()
	for id, entry := range b.entries {
		b.cron.Remove(entry)
		delete(b.entries, id)
	}
	b.started = false
	return nil
}

// Pending reports how many continuations await delivery.
func (b *CronBackend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// RegisterContinuation implements Backend. The job removes itself after its
// first run so the cron entry behaves as a one-shot trigger.
func (b *CronBackend) RegisterContinuation(_ context.Context, c Continuation) error {
	if b.deliver == nil {
		return errors.New("cron backend has no delivery function", errors.CategoryConflict).
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	id := uuid.NewString()
	delay := c.Delay
	if delay < time.Second {
		delay = time.Second
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entryID, err := b.cron.AddFunc(fmt.Sprintf("@every %ds", int(delay.Seconds())), func() {
		b.unregister(id)
		if err := b.deliver(context.Background(), c); err != nil {
			b.logger.Error("continuation delivery failed",
				"continuation", id, "invocation", c.Invocation, "error", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to add continuation job").
			WithTextCode(lifecycle.CodeInternalFailure)
	}

	b.entries[id] = entryID
	b.logger.Debug("registered local continuation",
		"continuation", id, "delay", delay.String(), "invocation", c.Invocation)
	return nil
}

func (b *CronBackend) unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.entries[id]; ok {
		b.cron.Remove(entry)
		delete(b.entries, id)
	}
}
