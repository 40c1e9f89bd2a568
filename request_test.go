package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestParseRequestGood(t *testing.T) {
	files := []string{
		"create.request.json",
		"read.request.json",
		"update.with-request-context.request.json",
		"delete.request.json",
		"list.request.json",
	}
	for _, name := range files {
		req, err := ParseRequest(loadFixture(t, name))
		require.NoError(t, err, name)

		action, err := req.Action()
		require.NoError(t, err, name)
		assert.True(t, action.Valid())
		assert.Equal(t, "Goliatone::Service::Widget", req.ResourceType)
	}
}

func TestParseRequestContinuationFields(t *testing.T) {
	req, err := ParseRequest(loadFixture(t, "update.with-request-context.request.json"))
	require.NoError(t, err)

	assert.Equal(t, 2, req.Invocation())
	ctx := req.CallbackContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "tok-8839", ctx["stabilization_token"])
}

func TestParseRequestMissingFields(t *testing.T) {
	_, err := ParseRequest(loadFixture(t, "missing-fields.request.json"))
	require.Error(t, err)
	assert.Equal(t, CodeInternalFailure, CodeOf(err))
}

func TestParseRequestMalformedJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`{"RequestType": `))
	require.Error(t, err)
	assert.Equal(t, CodeInternalFailure, CodeOf(err))
}

func TestParseRequestUnknownAction(t *testing.T) {
	_, err := ParseRequest([]byte(`{"RequestType":"Dance","ResourceType":"X::Y::Z"}`))
	require.Error(t, err)
	assert.Equal(t, CodeInternalFailure, CodeOf(err))
}

func TestValidateRejectsNegativeInvocation(t *testing.T) {
	req := Request{
		RequestType:    "Create",
		ResourceType:   "X::Y::Z",
		RequestContext: &RequestContext{Invocation: -1},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, CodeInternalFailure, CodeOf(err))
}

func TestFirstDeliveryDefaults(t *testing.T) {
	req := Request{RequestType: "Create", ResourceType: "X::Y::Z"}
	assert.Nil(t, req.CallbackContext())
	assert.Equal(t, 0, req.Invocation())
}

func TestWithContinuation(t *testing.T) {
	req := Request{RequestType: "Create", ResourceType: "X::Y::Z"}

	next := req.WithContinuation(CallbackContext{"step": 1})
	assert.Equal(t, 1, next.Invocation())
	assert.Equal(t, 1, next.CallbackContext()["step"])

	// the original request is never mutated
	assert.Nil(t, req.RequestContext)

	again := next.WithContinuation(CallbackContext{"step": 2})
	assert.Equal(t, 2, again.Invocation())
	assert.Equal(t, 1, next.CallbackContext()["step"])
}
