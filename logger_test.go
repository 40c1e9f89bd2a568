package lifecycle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtLoggerWritesLevelsAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewFmtLogger(buf)

	logger.Info("dispatching %s", "CREATE")
	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "dispatching CREATE")

	buf.Reset()
	WithLoggerFields(logger, map[string]any{"action": "CREATE", "invocation": 2}).Error("boom")
	out = buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "action=CREATE")
	assert.Contains(t, out, "invocation=2")
}

func TestNormalizeLogger(t *testing.T) {
	logger := NormalizeLogger(nil)
	require.NotNil(t, logger)
	_, ok := logger.(*FmtLogger)
	assert.True(t, ok)

	custom := NewFmtLogger(&bytes.Buffer{})
	assert.Equal(t, Logger(custom), NormalizeLogger(custom))
}

func TestGlogAdapter(t *testing.T) {
	buf := &bytes.Buffer{}
	base := glog.NewLogger(
		glog.WithWriter(buf),
		glog.WithLoggerTypeJSON(),
		glog.WithLevel("trace"),
	)

	logger := NewGlogAdapter(base)
	logger.Info("invocation complete")
	require.NotEmpty(t, strings.TrimSpace(buf.String()))
}

func TestGlogAdapterNilFallsBack(t *testing.T) {
	logger := NewGlogAdapter(nil)
	_, ok := logger.(*FmtLogger)
	assert.True(t, ok)
}
