package callbacks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/callbacks"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/toolservice"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	callbacks.TimeNowFn = func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}
	defer func() { callbacks.TimeNowFn = time.Now }()

	ctx := context.Background()
	rec := callbacks.NewRecorder(callbacks.ModeVerbose)
	req := &agent.Request{Prompt: "list accounts", Scope: toolservice.ScopeRead}

	rec.OnRunStart(ctx, req)
	rec.OnModelCallStart(ctx, "test-model", []llms.Message{
		llms.SystemMessage("sys"),
		llms.UserMessage("list accounts"),
	})
	rec.OnModelCallEnd(ctx, "test-model", &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "done"}},
	})
	rec.OnToolCallStart(ctx, "list_accounts", `{}`)
	rec.OnToolCallEnd(ctx, "list_accounts", `{}`, `{"count": 2}`)
	rec.OnToolCallStart(ctx, "purge_account", `{}`)
	rec.OnToolCallError(ctx, "purge_account", `{}`, errors.New("denied"))
	rec.OnRunEnd(ctx, req, "You have 2 accounts.")

	stats := rec.Stats()
	assert.Equal(t, uint32(1), stats.Runs)
	assert.Equal(t, uint32(1), stats.RunsSucceeded)
	assert.Equal(t, uint32(0), stats.RunsFailed)
	assert.Equal(t, uint32(1), stats.ModelCalls)
	assert.Equal(t, uint32(2), stats.TotalMessages)
	assert.Equal(t, uint64(len("sys")+len("list accounts")), stats.LLMBytesOut)
	assert.Equal(t, uint32(2), stats.ToolCalls)
	assert.Equal(t, uint32(1), stats.ToolCallsSucceeded)
	assert.Equal(t, uint32(1), stats.ToolCallsFailed)

	transcript := string(rec.Transcript())
	assert.Contains(t, transcript, "2024-05-01 12:00:00 *** Run Started ***")
	assert.Contains(t, transcript, "Scope: read")
	assert.Contains(t, transcript, "list_accounts *** Tool End ***")
	assert.Contains(t, transcript, "purge_account *** Tool Error *** denied")
	assert.Contains(t, transcript, "Tool calls: 2, Failed: 1")
	assert.Contains(t, transcript, "*** Run Ended ***")
}

func TestRecorder_RunError(t *testing.T) {
	rec := callbacks.NewRecorder(callbacks.ModeDefault)
	rec.OnRunStart(context.Background(), &agent.Request{Scope: toolservice.ScopeWrite})
	rec.OnRunError(context.Background(), &agent.Request{Scope: toolservice.ScopeWrite}, errors.New("boom"))

	stats := rec.Stats()
	assert.Equal(t, uint32(1), stats.RunsFailed)
	assert.Contains(t, string(rec.Transcript()), "*** Run Error *** boom")
}
