package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// ConversationID is a UUID-based identifier for Conversation
type ConversationID string

// NewConversationID generates a new UUID v4 ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// MessagePart is one variant of the message content union. Exactly one
// payload field is meaningful depending on Type; Validate enforces the
// discriminator so renderers can match on the closed set.
type MessagePart struct {
	Type     types.MessagePartType
	Text     string // MessagePartTypeText
	FileName string // MessagePartTypeFile
	ToolName string // MessagePartTypeToolCall / MessagePartTypeToolResult
	Payload  string // raw JSON for tool call arguments or results
}

// TextPart builds a text message part
func TextPart(text string) MessagePart {
	return MessagePart{Type: types.MessagePartTypeText, Text: text}
}

// Validate checks the part discriminator and its required payload
func (p *MessagePart) Validate() error {
	if !p.Type.IsValid() {
		return goerr.New("invalid message part type", goerr.V("type", p.Type))
	}
	switch p.Type {
	case types.MessagePartTypeText:
		if p.Text == "" {
			return goerr.New("text part requires text")
		}
	case types.MessagePartTypeFile:
		if p.FileName == "" {
			return goerr.New("file part requires file name")
		}
	case types.MessagePartTypeToolCall, types.MessagePartTypeToolResult:
		if p.ToolName == "" {
			return goerr.New("tool part requires tool name", goerr.V("type", p.Type))
		}
	}
	return nil
}

// Message is one turn of a conversation
type Message struct {
	Role  types.MessageRole
	Parts []MessagePart
}

// TextContent concatenates the text parts of the message. Non-text parts
// (attachments, tool calls) carry no extractable signal and are omitted.
func (m *Message) TextContent() string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == types.MessagePartTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// Validate checks the message role and all parts
func (m *Message) Validate() error {
	if !m.Role.IsValid() {
		return goerr.New("invalid message role", goerr.V("role", m.Role))
	}
	for i := range m.Parts {
		if err := m.Parts[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid message part", goerr.V("index", i))
		}
	}
	return nil
}

// Conversation is a chat transcript owned by the surrounding application.
// ExtractionStatus and LastExtractionAttemptAt are written exclusively by the
// memory extraction subsystem.
type Conversation struct {
	ID                      ConversationID
	WorkspaceID             string
	Messages                []Message
	ExtractionStatus        types.ExtractionStatus
	LastExtractionAttemptAt time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Validate checks the conversation invariants
func (c *Conversation) Validate() error {
	if c.WorkspaceID == "" {
		return goerr.New("conversation workspace ID is required")
	}
	if !c.ExtractionStatus.IsValid() {
		return goerr.New("invalid extraction status", goerr.V("status", c.ExtractionStatus))
	}
	for i := range c.Messages {
		if err := c.Messages[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid message", goerr.V("index", i))
		}
	}
	return nil
}
