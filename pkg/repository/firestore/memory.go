package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// memoryDoc is the Firestore document representation of model.Memory.
// Scope is not stored: it is derived from workspace_id being empty.
type memoryDoc struct {
	ID             model.MemoryID       `firestore:"id"`
	OwnerUserID    string               `firestore:"owner_user_id"`
	WorkspaceID    string               `firestore:"workspace_id"`
	ConversationID model.ConversationID `firestore:"conversation_id"`
	EntityType     string               `firestore:"entity_type"`
	EntityName     string               `firestore:"entity_name"`
	Observation    string               `firestore:"observation"`
	CreatedAt      time.Time            `firestore:"created_at"`
	UpdatedAt      time.Time            `firestore:"updated_at"`
}

func toMemoryDoc(m *model.Memory) *memoryDoc {
	return &memoryDoc{
		ID:             m.ID,
		OwnerUserID:    m.OwnerUserID,
		WorkspaceID:    m.WorkspaceID,
		ConversationID: m.ConversationID,
		EntityType:     m.EntityType.String(),
		EntityName:     m.EntityName,
		Observation:    m.Observation,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func fromMemoryDoc(d *memoryDoc) *model.Memory {
	return &model.Memory{
		ID:             d.ID,
		OwnerUserID:    d.OwnerUserID,
		WorkspaceID:    d.WorkspaceID,
		ConversationID: d.ConversationID,
		EntityType:     types.EntityType(d.EntityType),
		EntityName:     d.EntityName,
		Observation:    d.Observation,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

func (r *memoryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "memories")
}

func (r *memoryRepository) Create(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	if mem.ID == "" {
		mem.ID = model.NewMemoryID()
	}
	now := time.Now().UTC()
	mem.CreatedAt = now
	mem.UpdatedAt = now

	if err := mem.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid memory")
	}

	docRef := r.collection().Doc(string(mem.ID))
	if _, err := docRef.Set(ctx, toMemoryDoc(mem)); err != nil {
		return nil, goerr.Wrap(err, "failed to create memory", goerr.V("memory_id", mem.ID))
	}

	return mem, nil
}

// getOwnedTx reads a memory inside a transaction and verifies ownership.
// An ID belonging to another user is indistinguishable from a missing one.
func (r *memoryRepository) getOwnedTx(tx *firestore.Transaction, id model.MemoryID, ownerUserID string) (*memoryDoc, *firestore.DocumentRef, error) {
	docRef := r.collection().Doc(string(id))
	doc, err := tx.Get(docRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memory_id", id))
		}
		return nil, nil, goerr.Wrap(err, "failed to get memory", goerr.V("memory_id", id))
	}

	var d memoryDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to unmarshal memory", goerr.V("memory_id", id))
	}
	if d.OwnerUserID != ownerUserID {
		return nil, nil, goerr.Wrap(ErrNotFound, "memory not found",
			goerr.V("memory_id", id), goerr.V("owner_user_id", ownerUserID))
	}
	return &d, docRef, nil
}

func (r *memoryRepository) GetByOwner(ctx context.Context, id model.MemoryID, ownerUserID string) (*model.Memory, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "memory not found", goerr.V("memory_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("memory_id", id))
	}

	var d memoryDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory", goerr.V("memory_id", id))
	}
	if d.OwnerUserID != ownerUserID {
		return nil, goerr.Wrap(ErrNotFound, "memory not found",
			goerr.V("memory_id", id), goerr.V("owner_user_id", ownerUserID))
	}

	return fromMemoryDoc(&d), nil
}

func (r *memoryRepository) listByQuery(ctx context.Context, q firestore.Query) ([]*model.Memory, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Memory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory")
		}
		result = append(result, fromMemoryDoc(&d))
	}
	return result, nil
}

func (r *memoryRepository) ListVisible(ctx context.Context, ownerUserID, workspaceID string) ([]*model.Memory, error) {
	userLevel, err := r.listByQuery(ctx, r.collection().
		Where("owner_user_id", "==", ownerUserID).
		Where("workspace_id", "==", ""))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list user-level memories", goerr.V("owner_user_id", ownerUserID))
	}

	// Without a workspace only user-level memories are visible; the second
	// query would repeat the first one.
	if workspaceID == "" {
		return userLevel, nil
	}

	wsLevel, err := r.listByQuery(ctx, r.collection().
		Where("owner_user_id", "==", ownerUserID).
		Where("workspace_id", "==", workspaceID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workspace memories",
			goerr.V("owner_user_id", ownerUserID), goerr.V("workspace_id", workspaceID))
	}

	return append(userLevel, wsLevel...), nil
}

func (r *memoryRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*model.Memory, error) {
	result, err := r.listByQuery(ctx, r.collection().
		Where("owner_user_id", "==", ownerUserID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.V("owner_user_id", ownerUserID))
	}
	return result, nil
}

func (r *memoryRepository) UpdateObservation(ctx context.Context, id model.MemoryID, ownerUserID, observation string) (*model.Memory, error) {
	var updated *model.Memory
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		d, docRef, err := r.getOwnedTx(tx, id, ownerUserID)
		if err != nil {
			return err
		}

		d.Observation = observation
		d.UpdatedAt = time.Now().UTC()
		if err := tx.Set(docRef, d); err != nil {
			return goerr.Wrap(err, "failed to update memory", goerr.V("memory_id", id))
		}
		updated = fromMemoryDoc(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id model.MemoryID, ownerUserID string) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, docRef, err := r.getOwnedTx(tx, id, ownerUserID)
		if err != nil {
			return err
		}
		if err := tx.Delete(docRef); err != nil {
			return goerr.Wrap(err, "failed to delete memory", goerr.V("memory_id", id))
		}
		return nil
	})
}
