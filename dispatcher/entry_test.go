package dispatcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-lifecycle"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return data
}

func decodeResponse(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestEntrySyncGoodRequests(t *testing.T) {
	files := []string{
		"create.request.json",
		"read.request.json",
		"update.with-request-context.request.json",
		"delete.request.json",
		"list.request.json",
	}

	entry := Entry(registryWith(t, successHandler))
	for _, name := range files {
		raw, err := entry(context.Background(), loadFixture(t, name))
		require.NoError(t, err, name)

		resp := decodeResponse(t, raw)
		assert.Equal(t, "SUCCESS", resp["status"], name)
	}
}

func TestEntryMalformedRequest(t *testing.T) {
	entry := Entry(registryWith(t, successHandler))

	for _, payload := range [][]byte{
		loadFixture(t, "missing-fields.request.json"),
		[]byte(`{"RequestType": `),
		[]byte(`{"RequestType":"Dance","ResourceType":"X::Y::Z"}`),
	} {
		raw, err := entry(context.Background(), payload)
		require.NoError(t, err)

		resp := decodeResponse(t, raw)
		assert.Equal(t, "FAILED", resp["status"])
		assert.Equal(t, "InternalFailure", resp["errorCode"])
	}
}

func TestEntryHandlerFailureStaysStructured(t *testing.T) {
	entry := Entry(registryWith(t, func(_ context.Context, _ lifecycle.Request, _ lifecycle.ExecutionContext) (lifecycle.ProgressEvent, error) {
		return lifecycle.ProgressEvent{}, lifecycle.Throttling("slow down")
	}))

	raw, err := entry(context.Background(), loadFixture(t, "create.request.json"))
	require.NoError(t, err)

	resp := decodeResponse(t, raw)
	assert.Equal(t, "FAILED", resp["status"])
	assert.Equal(t, "Throttling", resp["errorCode"])
	assert.Equal(t, "Throttling: slow down", resp["message"])
}

func TestEntryUnserializableModel(t *testing.T) {
	entry := Entry(registryWith(t, func(_ context.Context, _ lifecycle.Request, _ lifecycle.ExecutionContext) (lifecycle.ProgressEvent, error) {
		return lifecycle.Success(make(chan int)), nil
	}))

	raw, err := entry(context.Background(), loadFixture(t, "create.request.json"))
	require.NoError(t, err)

	resp := decodeResponse(t, raw)
	assert.Equal(t, "FAILED", resp["status"])
	assert.Equal(t, "InternalFailure", resp["errorCode"])
}
