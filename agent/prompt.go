package agent

import (
	"fmt"
	"strings"

	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/toolservice"
)

// LookupUserToolName is the gateway tool the model is told to use to resolve
// a chat identity to a customer record.
const LookupUserToolName = "lookup_user"

const systemPreamble = "You are a support assistant for the operations chat. " +
	"Answer questions by calling the available tools and summarizing their results. " +
	"Do not invent data: if no tool can answer the question, say so."

const formattingContract = "Format replies for Slack: use *bold* for emphasis, " +
	"short bullet lists, and code blocks for identifiers or raw data. " +
	"Do not use tables or headings. Keep answers concise."

const (
	readScopeClause  = "You may only use read-only tools; never attempt to modify data."
	writeScopeClause = "You may only use write tools."
)

// BuildMessages produces the canonical conversation fed to the model:
// exactly one system message, the prior history verbatim in original order,
// and exactly one trailing user message carrying the prompt. No truncation
// happens here; history policy belongs to the caller.
func BuildMessages(scope toolservice.AccessScope, userID string, history []llms.Message, prompt string) []llms.Message {
	parts := []string{systemPreamble, scopeClause(scope), formattingContract}
	if userID != "" {
		parts = append(parts, fmt.Sprintf(
			"The requesting user is %q. Before answering any user-scoped question, "+
				"resolve this identity to a customer record with the `%s` tool.",
			userID, LookupUserToolName))
	}

	messages := make([]llms.Message, 0, len(history)+2)
	messages = append(messages, llms.SystemMessage(strings.Join(parts, "\n\n")))
	messages = append(messages, history...)
	messages = append(messages, llms.UserMessage(prompt))
	return messages
}

func scopeClause(scope toolservice.AccessScope) string {
	if scope == toolservice.ScopeWrite {
		return writeScopeClause
	}
	return readScopeClause
}
