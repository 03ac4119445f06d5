package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

type messagePartDoc struct {
	Type     string `firestore:"type"`
	Text     string `firestore:"text,omitempty"`
	FileName string `firestore:"file_name,omitempty"`
	ToolName string `firestore:"tool_name,omitempty"`
	Payload  string `firestore:"payload,omitempty"`
}

type messageDoc struct {
	Role  string           `firestore:"role"`
	Parts []messagePartDoc `firestore:"parts"`
}

type conversationDoc struct {
	ID                      model.ConversationID `firestore:"id"`
	WorkspaceID             string               `firestore:"workspace_id"`
	Messages                []messageDoc         `firestore:"messages"`
	ExtractionStatus        string               `firestore:"extraction_status"`
	LastExtractionAttemptAt time.Time            `firestore:"last_extraction_attempt_at"`
	CreatedAt               time.Time            `firestore:"created_at"`
	UpdatedAt               time.Time            `firestore:"updated_at"`
}

func toConversationDoc(c *model.Conversation) *conversationDoc {
	msgs := make([]messageDoc, len(c.Messages))
	for i, m := range c.Messages {
		parts := make([]messagePartDoc, len(m.Parts))
		for j, p := range m.Parts {
			parts[j] = messagePartDoc{
				Type:     p.Type.String(),
				Text:     p.Text,
				FileName: p.FileName,
				ToolName: p.ToolName,
				Payload:  p.Payload,
			}
		}
		msgs[i] = messageDoc{Role: m.Role.String(), Parts: parts}
	}
	return &conversationDoc{
		ID:                      c.ID,
		WorkspaceID:             c.WorkspaceID,
		Messages:                msgs,
		ExtractionStatus:        c.ExtractionStatus.String(),
		LastExtractionAttemptAt: c.LastExtractionAttemptAt,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

func fromConversationDoc(d *conversationDoc) *model.Conversation {
	msgs := make([]model.Message, len(d.Messages))
	for i, m := range d.Messages {
		parts := make([]model.MessagePart, len(m.Parts))
		for j, p := range m.Parts {
			parts[j] = model.MessagePart{
				Type:     types.MessagePartType(p.Type),
				Text:     p.Text,
				FileName: p.FileName,
				ToolName: p.ToolName,
				Payload:  p.Payload,
			}
		}
		msgs[i] = model.Message{Role: types.MessageRole(m.Role), Parts: parts}
	}
	return &model.Conversation{
		ID:                      d.ID,
		WorkspaceID:             d.WorkspaceID,
		Messages:                msgs,
		ExtractionStatus:        types.ExtractionStatus(d.ExtractionStatus),
		LastExtractionAttemptAt: d.LastExtractionAttemptAt,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "conversations")
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

	docRef := r.collection().Doc(string(conv.ID))
	if _, err := docRef.Set(ctx, toConversationDoc(conv)); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation", goerr.V("conversation_id", conv.ID))
	}

	return conv, nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversation_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("conversation_id", id))
	}

	var d conversationDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("conversation_id", id))
	}

	return fromConversationDoc(&d), nil
}

func (r *conversationRepository) listByQuery(ctx context.Context, q firestore.Query) ([]*model.Conversation, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Conversation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations")
		}

		var d conversationDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal conversation")
		}
		result = append(result, fromConversationDoc(&d))
	}
	return result, nil
}

// Firestore caps "in" filters at 30 values.
const workspaceIDChunkSize = 30

func chunkStrings(values []string, size int) [][]string {
	var chunks [][]string
	for len(values) > size {
		chunks = append(chunks, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		chunks = append(chunks, values)
	}
	return chunks
}

// ListEligibleForExtraction queries each status class per workspace chunk,
// so the cap is applied only to conversations that already belong to one of
// the given workspaces. Results are merged, re-sorted by update time, and
// capped client-side.
func (r *conversationRepository) ListEligibleForExtraction(ctx context.Context, workspaceIDs []string, failedBefore time.Time, limit int) ([]*model.Conversation, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil
	}

	var result []*model.Conversation
	for _, chunk := range chunkStrings(workspaceIDs, workspaceIDChunkSize) {
		for _, st := range []types.ExtractionStatus{
			types.ExtractionStatusUnset,
			types.ExtractionStatusPending,
		} {
			fresh, err := r.listByQuery(ctx, r.collection().
				Where("workspace_id", "in", chunk).
				Where("extraction_status", "==", st.String()).
				OrderBy("updated_at", firestore.Desc).
				Limit(limit))
			if err != nil {
				return nil, goerr.Wrap(err, "failed to list pending conversations", goerr.V("status", st))
			}
			result = append(result, fresh...)
		}

		failed, err := r.listByQuery(ctx, r.collection().
			Where("workspace_id", "in", chunk).
			Where("extraction_status", "==", types.ExtractionStatusFailed.String()).
			Where("last_extraction_attempt_at", "<", failedBefore).
			Limit(limit))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list cooled-down failed conversations")
		}
		result = append(result, failed...)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *conversationRepository) UpdateExtractionStatus(ctx context.Context, id model.ConversationID, newStatus types.ExtractionStatus, attemptedAt time.Time) error {
	if !newStatus.IsValid() {
		return goerr.New("invalid extraction status", goerr.V("status", newStatus))
	}

	docRef := r.collection().Doc(string(id))
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "extraction_status", Value: newStatus.String()},
		{Path: "last_extraction_attempt_at", Value: attemptedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("conversation_id", id))
		}
		return goerr.Wrap(err, "failed to update extraction status", goerr.V("conversation_id", id))
	}
	return nil
}
