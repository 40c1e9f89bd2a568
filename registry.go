package lifecycle

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// HandlerFunc is user-supplied business logic for one lifecycle action. The
// prior step's callback context, when present, travels on the request so the
// handler can resume work. Handlers are expected to be idempotent with respect
// to re-running the same step; delivery is at-least-once.
type HandlerFunc func(ctx context.Context, req Request, ec ExecutionContext) (ProgressEvent, error)

// Registry maps the fixed action set to concrete handlers. It replaces
// runtime name based lookup with an explicit table checked at registration
// time, leaving "entry absent" as the only resolution failure mode.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Action]HandlerFunc
}

// NewRegistry returns an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Action]HandlerFunc),
	}
}

// Register binds a handler to an action. Nil handlers, unknown actions, and
// duplicate registrations are construction-time errors.
func (r *Registry) Register(action Action, handler HandlerFunc) error {
	if handler == nil {
		return errors.New("handler cannot be nil", errors.CategoryBadInput).
			WithTextCode(CodeInternalFailure).
			WithMetadata(map[string]any{"action": action.String()})
	}
	if !action.Valid() {
		return errors.New("cannot register handler for unknown action", errors.CategoryBadInput).
			WithTextCode(CodeInternalFailure).
			WithMetadata(map[string]any{"action": action.String()})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[action]; exists {
		return errors.New("handler already registered for action", errors.CategoryConflict).
			WithTextCode(CodeInternalFailure).
			WithMetadata(map[string]any{"action": action.String()})
	}
	r.handlers[action] = handler
	return nil
}

// MustRegister is Register for wiring done at program start, where a bad
// registration is a deployment defect.
func (r *Registry) MustRegister(action Action, handler HandlerFunc) {
	if err := r.Register(action, handler); err != nil {
		panic(err)
	}
}

// Resolve returns the handler bound to action. A miss is always an
// InternalFailure: it signals a deployment or wiring defect, never handler
// business logic.
func (r *Registry) Resolve(action Action) (HandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[action]
	if !ok {
		return nil, errors.New("no handler for action", errors.CategoryHandler).
			WithTextCode(CodeInternalFailure).
			WithMetadata(map[string]any{"action": action.String()})
	}
	return handler, nil
}

// Actions returns the actions with a registered handler.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Action, 0, len(r.handlers))
	for _, a := range Actions() {
		if _, ok := r.handlers[a]; ok {
			out = append(out, a)
		}
	}
	return out
}
