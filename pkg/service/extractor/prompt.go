package extractor

import (
	"fmt"
	"strings"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// buildSystemPrompt creates the fixed system prompt for memory extraction
func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are a memory extraction assistant. Your task is to read a conversation transcript and derive durable facts about the user that are worth remembering across future conversations.\n\n")

	sb.WriteString("## Entity types:\n\n")
	sb.WriteString("Each memory has exactly one entity type:\n")
	for _, et := range types.AllEntityTypes() {
		fmt.Fprintf(&sb, "- %s\n", et)
	}
	sb.WriteString("\n")

	sb.WriteString("## Scopes:\n\n")
	sb.WriteString("- \"user\": the fact applies to the user across all of their workspaces (e.g. personal preferences, their name)\n")
	sb.WriteString("- \"workspace\": the fact applies only within the current workspace (e.g. project conventions, team constraints)\n\n")

	sb.WriteString("## Rules:\n\n")
	sb.WriteString("1. Do not re-extract facts that already appear in the existing memories listing.\n")
	sb.WriteString("2. If a statement in the conversation contradicts an existing memory, emit an update referencing that memory's id instead of a new memory.\n")
	sb.WriteString("3. If the conversation asks to forget something, emit a delete referencing that memory's id.\n")
	sb.WriteString("4. Only extract facts that will stay relevant beyond this conversation. Ignore small talk and one-off requests.\n")
	sb.WriteString("5. If there is nothing to extract, return empty arrays.\n")

	return sb.String()
}

// buildUserPrompt embeds the transcript and the existing-memory listing
func buildUserPrompt(conv *model.Conversation, memories []*model.Memory) string {
	var sb strings.Builder

	sb.WriteString("## Conversation transcript:\n\n")
	sb.WriteString(renderTranscript(conv))
	sb.WriteString("\n## Existing memories:\n\n")
	sb.WriteString(renderMemories(memories))

	return sb.String()
}

// renderTranscript renders the conversation as role-prefixed lines of text.
// Non-text parts (attachments, tool calls) are omitted from the extraction
// input; a message with no text at all is skipped entirely.
func renderTranscript(conv *model.Conversation) string {
	var sb strings.Builder
	for i := range conv.Messages {
		msg := &conv.Messages[i]
		text := msg.TextContent()
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", msg.Role, text)
	}
	return sb.String()
}

// renderMemories renders one compact record per line for token efficiency.
// Scope is derived from the workspace binding, never stored.
func renderMemories(memories []*model.Memory) string {
	if len(memories) == 0 {
		return "(none)\n"
	}

	var sb strings.Builder
	for _, m := range memories {
		fmt.Fprintf(&sb, "- id=%s type=%s name=%q scope=%s observation=%q\n",
			m.ID, m.EntityType, m.EntityName, m.Scope(), m.Observation)
	}
	return sb.String()
}
