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
)

type workspaceDoc struct {
	ID                   string    `firestore:"id"`
	Name                 string    `firestore:"name"`
	OwnerUserID          string    `firestore:"owner_user_id"`
	ExtractionProviderID string    `firestore:"extraction_provider_id"`
	CreatedAt            time.Time `firestore:"created_at"`
	UpdatedAt            time.Time `firestore:"updated_at"`
}

func toWorkspaceDoc(w *model.Workspace) *workspaceDoc {
	return &workspaceDoc{
		ID:                   w.ID,
		Name:                 w.Name,
		OwnerUserID:          w.OwnerUserID,
		ExtractionProviderID: string(w.ExtractionProviderID),
		CreatedAt:            w.CreatedAt,
		UpdatedAt:            w.UpdatedAt,
	}
}

func fromWorkspaceDoc(d *workspaceDoc) *model.Workspace {
	return &model.Workspace{
		ID:                   d.ID,
		Name:                 d.Name,
		OwnerUserID:          d.OwnerUserID,
		ExtractionProviderID: model.ProviderID(d.ExtractionProviderID),
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

type workspaceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newWorkspaceRepository(client *firestore.Client) *workspaceRepository {
	return &workspaceRepository{client: client}
}

func (r *workspaceRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "workspaces")
}

func (r *workspaceRepository) Create(ctx context.Context, ws *model.Workspace) (*model.Workspace, error) {
	if ws.ID == "" {
		ws.ID = model.NewWorkspaceID()
	}
	now := time.Now().UTC()
	ws.CreatedAt = now
	ws.UpdatedAt = now

	if err := ws.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid workspace")
	}

	docRef := r.collection().Doc(ws.ID)
	if _, err := docRef.Set(ctx, toWorkspaceDoc(ws)); err != nil {
		return nil, goerr.Wrap(err, "failed to create workspace", goerr.V("workspace_id", ws.ID))
	}

	return ws, nil
}

func (r *workspaceRepository) Get(ctx context.Context, id string) (*model.Workspace, error) {
	doc, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "workspace not found", goerr.V("workspace_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workspace", goerr.V("workspace_id", id))
	}

	var d workspaceDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workspace", goerr.V("workspace_id", id))
	}

	return fromWorkspaceDoc(&d), nil
}

func (r *workspaceRepository) listByQuery(ctx context.Context, q firestore.Query) ([]*model.Workspace, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Workspace
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate workspaces")
		}

		var d workspaceDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal workspace")
		}
		result = append(result, fromWorkspaceDoc(&d))
	}
	return result, nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*model.Workspace, error) {
	return r.listByQuery(ctx, r.collection().Query)
}

func (r *workspaceRepository) ListExtractionEnabled(ctx context.Context) ([]*model.Workspace, error) {
	return r.listByQuery(ctx, r.collection().
		Where("extraction_provider_id", "!=", ""))
}
