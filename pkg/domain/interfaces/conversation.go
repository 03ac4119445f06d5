package interfaces

import (
	"context"
	"time"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// ConversationRepository defines the interface for Conversation persistence.
// The conversation record is owned by the surrounding application; this
// subsystem writes only the extraction status fields.
type ConversationRepository interface {
	// Create creates a new conversation
	Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error)

	// Get retrieves a conversation by ID
	Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListEligibleForExtraction returns conversations in the given workspaces
	// whose status is unset or pending, or failed with a last attempt before
	// failedBefore. Ordered by most recently updated first, capped at limit.
	// Conversations stuck in processing are deliberately not reselected.
	ListEligibleForExtraction(ctx context.Context, workspaceIDs []string, failedBefore time.Time, limit int) ([]*model.Conversation, error)

	// UpdateExtractionStatus sets the extraction status and stamps the last
	// attempt time
	UpdateExtractionStatus(ctx context.Context, id model.ConversationID, status types.ExtractionStatus, attemptedAt time.Time) error
}
