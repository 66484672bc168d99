package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(level LogLevel, format string) (*RecallMeshLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{Level: level, Format: format, Output: buf})
	return logger, buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want LogLevel
	}{
		{name: "debug", want: LogLevelDebug},
		{name: "DEBUG", want: LogLevelDebug},
		{name: "info", want: LogLevelInfo},
		{name: "warn", want: LogLevelWarn},
		{name: "warning", want: LogLevelWarn},
		{name: "error", want: LogLevelError},
		{name: "verbose", want: LogLevelInfo},
		{name: "", want: LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name), "level %q", tt.name)
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerLevelGating(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn, "text")

	logger.Debug("debug entry")
	logger.Info("info entry")
	logger.Warn("warn entry")
	logger.Error("error entry")

	out := buf.String()
	assert.NotContains(t, out, "debug entry")
	assert.NotContains(t, out, "info entry")
	assert.Contains(t, out, "warn entry")
	assert.Contains(t, out, "error entry")
}

func TestLoggerFormatsMessage(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.Info("exchange %s took %d ms", "semantic/hybrid", 42)

	assert.Contains(t, buf.String(), "exchange semantic/hybrid took 42 ms")
}

func TestContextualHelpers(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.
		WithComponent("dispatch").
		WithCollection("History_TestRoom").
		WithChannel("chan-9").
		WithContext("request_id", "req-1").
		Info("routed")

	out := buf.String()
	assert.Contains(t, out, "component=dispatch")
	assert.Contains(t, out, "collection=History_TestRoom")
	assert.Contains(t, out, "channel_id=chan-9")
	assert.Contains(t, out, "request_id=req-1")
}

func TestContextualHelpersDoNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")
	_ = logger.WithComponent("dispatch").WithContext("request_id", "req-1")

	logger.Info("plain entry")

	out := buf.String()
	assert.NotContains(t, out, "component=")
	assert.NotContains(t, out, "request_id=")
}

func TestJSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "json")

	logger.WithComponent("engine").Info("started")

	out := buf.String()
	assert.Contains(t, out, `"component":"engine"`)
	assert.Contains(t, out, `"msg":"started"`)
}

func TestLogStoreCall(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.LogStoreCall("insert", 12*time.Millisecond, true, nil)
	logger.LogStoreCall("batch_insert", 7*time.Millisecond, false, errors.New("object rejected"))

	out := buf.String()
	assert.Contains(t, out, "Store call completed")
	assert.Contains(t, out, "store_op=insert")
	assert.Contains(t, out, "Store call failed")
	assert.Contains(t, out, "store_op=batch_insert")
	assert.Contains(t, out, "object rejected")
}

func TestLogRetrieval(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.LogRetrieval("hybrid", 10, 20*time.Millisecond, nil)
	logger.LogRetrieval("nearText", 0, 5*time.Millisecond, errors.New("vectorizer down"))

	out := buf.String()
	assert.Contains(t, out, "Retrieval completed")
	assert.Contains(t, out, "retrieval_mode=hybrid")
	assert.Contains(t, out, "hit_count=10")
	assert.Contains(t, out, "Retrieval failed")
	assert.Contains(t, out, "vectorizer down")
}

func TestLogCompletionCall(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.LogCompletionCall("mistral", "mistral-small-latest", 80*time.Millisecond, true, nil)

	out := buf.String()
	assert.Contains(t, out, "Completion call completed")
	assert.Contains(t, out, "provider=mistral")
	assert.Contains(t, out, "model=mistral-small-latest")
}

func TestLogExchange(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.LogExchange("semantic/hybrid", 2, 150*time.Millisecond, true, nil)
	logger.LogExchange("generative/nearText", 0, 90*time.Millisecond, false, errors.New("generation returned no usable text"))

	out := buf.String()
	assert.Contains(t, out, "Exchange completed")
	assert.Contains(t, out, "strategy=semantic/hybrid")
	assert.Contains(t, out, "persisted_entries=2")
	assert.Contains(t, out, "Exchange failed")
	assert.Contains(t, out, "generation returned no usable text")
}

func TestErrorWithStack(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	logger.ErrorWithStack(errors.New("boom"), "exchange blew up")

	out := buf.String()
	assert.Contains(t, out, "exchange blew up")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "stack_trace=")
}

func TestStartTimer(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo, "text")

	done := logger.StartTimer("ensure_open")
	done()

	out := buf.String()
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "operation=ensure_open")
}

func TestNewHandlerLogger(t *testing.T) {
	logger := NewHandlerLogger(LogLevelDebug, "text", false)

	assert.NotNil(t, logger)
	assert.IsType(t, &SlogAdapter{}, logger)
}

func TestNoOpLogger(t *testing.T) {
	logger := NoOpLogger{}

	assert.NotPanics(t, func() {
		logger.Debug("d")
		logger.Info("i", "k", "v")
		logger.Warn("w")
		logger.Error("e", "err", errors.New("x"))
	})
}
