package llms

import (
	"fmt"
)

// Role is the type of chat message.
type Role string

const (
	// RoleSystem is a message carrying the system instructions.
	RoleSystem Role = "system"
	// RoleUser is a message sent by the end user.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleFunction is a message carrying the result of a function call.
	RoleFunction Role = "function"
)

// FunctionCall is the name and arguments of a function call requested by the model.
type FunctionCall struct {
	// The name of the function to call.
	Name string `json:"name"`
	// The arguments to pass to the function, as a JSON string.
	Arguments string `json:"arguments"`
}

func (fc FunctionCall) String() string {
	return fmt.Sprintf("FunctionCall: %s, input: %s", fc.Name, fc.Arguments)
}

// Message is a single message in a chat conversation. An assistant message may
// carry a pending FunctionCall; a function message carries the named tool's
// serialized result in Content.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// Name is the tool name on RoleFunction messages.
	Name string `json:"name,omitempty"`
	// FunctionCall is set on RoleAssistant messages that request a tool invocation.
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// SystemMessage creates a system message with the given instructions.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message with the given text content.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// FunctionCallMessage creates an assistant message requesting a function call.
func FunctionCallMessage(fc *FunctionCall) Message {
	return Message{Role: RoleAssistant, FunctionCall: fc}
}

// FunctionResultMessage creates a function message carrying a tool result.
func FunctionResultMessage(name, content string) Message {
	return Message{Role: RoleFunction, Name: name, Content: content}
}

// ContentResponse is the response returned by a GenerateContent call.
// It can potentially return multiple content choices.
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice is one of the response choices returned by GenerateContent calls.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string `json:"content"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`

	// FuncCall is non-nil when the model asks to invoke a function.
	FuncCall *FunctionCall `json:"func_call,omitempty"`
}

// CountMessagesContentSize returns the total content size of the messages, in bytes.
func CountMessagesContentSize(messages []Message) uint64 {
	var size uint64
	for _, m := range messages {
		size += uint64(len(m.Content))
		if m.FunctionCall != nil {
			size += uint64(len(m.FunctionCall.Arguments))
		}
	}
	return size
}
