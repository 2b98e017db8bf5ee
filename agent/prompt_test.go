package agent_test

import (
	"testing"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/toolservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildMessages_Ordering(t *testing.T) {
	history := []llms.Message{
		llms.UserMessage("earlier question"),
		llms.AssistantMessage("earlier answer"),
	}

	msgs := agent.BuildMessages(toolservice.ScopeRead, "", history, "new question")
	require.Len(t, msgs, 4)
	assert.Equal(t, llms.RoleSystem, msgs[0].Role)
	assert.Equal(t, history[0], msgs[1])
	assert.Equal(t, history[1], msgs[2])
	assert.Equal(t, llms.RoleUser, msgs[3].Role)
	assert.Equal(t, "new question", msgs[3].Content)
}

func Test_BuildMessages_EmptyHistory(t *testing.T) {
	msgs := agent.BuildMessages(toolservice.ScopeRead, "", nil, "hello")
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleSystem, msgs[0].Role)
	assert.Equal(t, llms.RoleUser, msgs[1].Role)
}

func Test_BuildMessages_ScopeClause(t *testing.T) {
	read := agent.BuildMessages(toolservice.ScopeRead, "", nil, "q")[0].Content
	assert.Contains(t, read, "read-only tools")

	write := agent.BuildMessages(toolservice.ScopeWrite, "", nil, "q")[0].Content
	assert.Contains(t, write, "use write tools")
	assert.NotContains(t, write, "read-only tools")
}

func Test_BuildMessages_IdentityClause(t *testing.T) {
	anon := agent.BuildMessages(toolservice.ScopeRead, "", nil, "q")[0].Content
	assert.NotContains(t, anon, agent.LookupUserToolName)

	known := agent.BuildMessages(toolservice.ScopeRead, "U12345", nil, "q")[0].Content
	assert.Contains(t, known, `"U12345"`)
	assert.Contains(t, known, agent.LookupUserToolName)
}
