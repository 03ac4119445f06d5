package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

type conversationRepository struct {
	mu            sync.Mutex
	conversations map[model.ConversationID]*model.Conversation
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[model.ConversationID]*model.Conversation),
	}
}

func cloneConversation(c *model.Conversation) *model.Conversation {
	clone := *c
	clone.Messages = make([]model.Message, len(c.Messages))
	for i, m := range c.Messages {
		m.Parts = append([]model.MessagePart(nil), m.Parts...)
		clone.Messages[i] = m
	}
	return &clone
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	if conv.ID == "" {
		conv.ID = model.NewConversationID()
	}
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	if err := conv.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid conversation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.ID] = cloneConversation(conv)

	return conv, nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversation_id", id))
	}
	return cloneConversation(conv), nil
}

func (r *conversationRepository) ListEligibleForExtraction(ctx context.Context, workspaceIDs []string, failedBefore time.Time, limit int) ([]*model.Conversation, error) {
	wsSet := make(map[string]bool, len(workspaceIDs))
	for _, id := range workspaceIDs {
		wsSet[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Conversation
	for _, conv := range r.conversations {
		if !wsSet[conv.WorkspaceID] {
			continue
		}
		switch conv.ExtractionStatus {
		case types.ExtractionStatusUnset, types.ExtractionStatusPending:
			result = append(result, cloneConversation(conv))
		case types.ExtractionStatusFailed:
			if conv.LastExtractionAttemptAt.Before(failedBefore) {
				result = append(result, cloneConversation(conv))
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *conversationRepository) UpdateExtractionStatus(ctx context.Context, id model.ConversationID, status types.ExtractionStatus, attemptedAt time.Time) error {
	if !status.IsValid() {
		return goerr.New("invalid extraction status", goerr.V("status", status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversation_id", id))
	}

	conv.ExtractionStatus = status
	conv.LastExtractionAttemptAt = attemptedAt
	return nil
}
