package types

import "fmt"

// MessageRole identifies the speaker of a conversation message
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
	MessageRoleTool      MessageRole = "tool"
)

// IsValid checks if the message role is valid
func (r MessageRole) IsValid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem, MessageRoleTool:
		return true
	default:
		return false
	}
}

// String returns the string representation of the message role
func (r MessageRole) String() string {
	return string(r)
}

// MessagePartType is the discriminator of the message part tagged union.
// Part content is a loosely-shaped bag at the ingestion boundary; validating
// the type here lets downstream renderers pattern-match a closed set.
type MessagePartType string

const (
	MessagePartTypeText       MessagePartType = "text"
	MessagePartTypeFile       MessagePartType = "file"
	MessagePartTypeToolCall   MessagePartType = "tool_call"
	MessagePartTypeToolResult MessagePartType = "tool_result"
)

// AllMessagePartTypes returns all valid message part types
func AllMessagePartTypes() []MessagePartType {
	return []MessagePartType{
		MessagePartTypeText,
		MessagePartTypeFile,
		MessagePartTypeToolCall,
		MessagePartTypeToolResult,
	}
}

// IsValid checks if the message part type is valid
func (t MessagePartType) IsValid() bool {
	switch t {
	case MessagePartTypeText,
		MessagePartTypeFile,
		MessagePartTypeToolCall,
		MessagePartTypeToolResult:
		return true
	default:
		return false
	}
}

// String returns the string representation of the message part type
func (t MessagePartType) String() string {
	return string(t)
}

// ParseMessagePartType parses a string into a MessagePartType
func ParseMessagePartType(s string) (MessagePartType, error) {
	t := MessagePartType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid message part type: %s", s)
	}
	return t, nil
}
