package lifecycle

import (
	"encoding/json"

	"github.com/goliatone/go-errors"
)

// RequestContext is present only on continuation deliveries. It carries the
// prior step's callback context and the invocation counter the external
// scheduler redelivers.
type RequestContext struct {
	CallbackContext CallbackContext `json:"CallbackContext,omitempty"`
	Invocation      int             `json:"Invocation,omitempty"`
}

// Request is the inbound wire event, consumed read-only. Resource
// identification fields are opaque to the dispatch core and passed through to
// the handler untouched.
type Request struct {
	RequestType        string          `json:"RequestType"`
	ResourceType       string          `json:"ResourceType"`
	LogicalResourceID  string          `json:"LogicalResourceId,omitempty"`
	RequestContext     *RequestContext `json:"RequestContext,omitempty"`
	ResourceProperties json.RawMessage `json:"ResourceProperties,omitempty"`
	PreviousProperties json.RawMessage `json:"PreviousResourceProperties,omitempty"`
}

// ParseRequest decodes and validates an inbound event. Any structural problem
// is reported as a taxonomy error so the boundary fails closed with
// InternalFailure before a handler runs.
func ParseRequest(payload []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, errors.Wrap(err, errors.CategoryBadInput, "malformed request payload").
			WithTextCode(CodeInternalFailure)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the structural fields the dispatch core depends on. The
// callback context is re-validated here at the point it is re-read rather than
// assumed well formed from the previous step.
func (r Request) Validate() error {
	if r.RequestType == "" {
		return errors.New("request missing RequestType", errors.CategoryBadInput).
			WithTextCode(CodeInternalFailure)
	}
	if _, err := ParseAction(r.RequestType); err != nil {
		return err
	}
	if r.ResourceType == "" {
		return errors.New("request missing ResourceType", errors.CategoryBadInput).
			WithTextCode(CodeInternalFailure)
	}
	if r.RequestContext != nil && r.RequestContext.Invocation < 0 {
		return errors.New("request context has negative invocation counter", errors.CategoryBadInput).
			WithTextCode(CodeInternalFailure)
	}
	return nil
}

// Action resolves the declared action. Validate must have passed.
func (r Request) Action() (Action, error) {
	return ParseAction(r.RequestType)
}

// CallbackContext returns the prior step's callback context, or nil on a first
// delivery.
func (r Request) CallbackContext() CallbackContext {
	if r.RequestContext == nil {
		return nil
	}
	return r.RequestContext.CallbackContext
}

// Invocation returns the delivery counter, zero on a first delivery.
func (r Request) Invocation() int {
	if r.RequestContext == nil {
		return 0
	}
	return r.RequestContext.Invocation
}

// WithContinuation returns a copy of the request carrying the next step's
// callback context and an incremented invocation counter. The receiver is not
// mutated; continuation state always lives on a new request context.
func (r Request) WithContinuation(ctx CallbackContext) Request {
	next := r
	next.RequestContext = &RequestContext{
		CallbackContext: ctx.Clone(),
		Invocation:      r.Invocation() + 1,
	}
	return next
}
