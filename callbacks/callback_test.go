package callbacks_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/callbacks"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/toolservice"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
)

var testLogger = xlog.NewPackageLogger("github.com/effective-security/chatops", "callbacks_test")

func emitAll(cb agent.Callback) {
	ctx := context.Background()
	req := &agent.Request{Prompt: "test input", Scope: toolservice.ScopeRead}
	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: "test output"},
		},
	}

	cb.OnRunStart(ctx, req)
	cb.OnModelCallStart(ctx, "test-model", []llms.Message{llms.UserMessage("test input")})
	cb.OnModelCallEnd(ctx, "test-model", resp)
	cb.OnToolCallStart(ctx, "test-tool", `{}`)
	cb.OnToolCallEnd(ctx, "test-tool", `{}`, "test output")
	cb.OnToolCallError(ctx, "test-tool", `{}`, errors.New("test error"))
	cb.OnRunEnd(ctx, req, "test reply")
	cb.OnRunError(ctx, req, errors.New("test error"))
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)
	emitAll(cb)

	res := buf.String()
	assert.Contains(t, res, "Run Start: scope read")
	assert.Contains(t, res, "Prompt: test input")
	assert.Contains(t, res, "Model Call: test-model model, 1 messages")
	assert.Contains(t, res, "Tool Start: test-tool")
	assert.Contains(t, res, "Tool End: test-tool")
	assert.Contains(t, res, "Output: test output")
	assert.Contains(t, res, "Tool Error: test-tool: test error")
	assert.Contains(t, res, "Run Error: test error")
}

func TestNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		emitAll(callbacks.NewNoop())
	})
}

func TestPackageLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		emitAll(callbacks.NewPackageLogger(testLogger))
	})
}

func TestFanout(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	fan := callbacks.NewFanout(callbacks.NewPrinter(&buf1, callbacks.ModeDefault))
	fan.Add(callbacks.NewPrinter(&buf2, callbacks.ModeDefault))
	emitAll(fan)

	assert.Equal(t, buf1.String(), buf2.String())
	assert.Contains(t, buf1.String(), "Tool Start: test-tool")
}
