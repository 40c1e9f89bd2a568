package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-lifecycle"
)

// EntryFunc is the externally invoked boundary. It is compatible with a
// Lambda style runtime: raw JSON in, raw JSON out. The returned error is
// always nil; business failures travel inside the serialized response.
type EntryFunc func(ctx context.Context, payload json.RawMessage) ([]byte, error)

// Entry builds the boundary function. Its only job is parsing the request,
// constructing a Dispatcher for the call, running it, and serializing the
// result; it performs no business logic. Callers always receive one of the
// three wire shapes, never a transport-level error.
func Entry(registry *lifecycle.Registry, opts ...Option) EntryFunc {
	return func(ctx context.Context, payload json.RawMessage) ([]byte, error) {
		req, err := lifecycle.ParseRequest(payload)
		if err != nil {
			return encode(lifecycle.FailedFrom(err)), nil
		}

		ec := lifecycle.NewExecutionContext(ctx)
		event := New(req, ec, registry, opts...).Run(ctx)
		return encode(event), nil
	}
}

func encode(event lifecycle.ProgressEvent) []byte {
	out, err := json.Marshal(event)
	if err != nil {
		// The resource model was not serializable. Still emit a well formed
		// failure instead of leaking a transport error.
		out, _ = json.Marshal(lifecycle.Failed(
			lifecycle.CodeInternalFailure,
			"InternalFailure: response serialization failed: "+err.Error(),
		))
	}
	return out
}
