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

type providerDoc struct {
	ID                model.ProviderID  `firestore:"id"`
	Name              string            `firestore:"name"`
	Type              string            `firestore:"type"`
	APIKey            string            `firestore:"api_key"`
	BaseURL           string            `firestore:"base_url"`
	Headers           map[string]string `firestore:"headers"`
	ProjectID         string            `firestore:"project_id"`
	Location          string            `firestore:"location"`
	ExtractionModelID string            `firestore:"extraction_model_id"`
	CreatedAt         time.Time         `firestore:"created_at"`
	UpdatedAt         time.Time         `firestore:"updated_at"`
}

func toProviderDoc(p *model.Provider) *providerDoc {
	return &providerDoc{
		ID:                p.ID,
		Name:              p.Name,
		Type:              p.Type.String(),
		APIKey:            p.APIKey,
		BaseURL:           p.BaseURL,
		Headers:           p.Headers,
		ProjectID:         p.ProjectID,
		Location:          p.Location,
		ExtractionModelID: p.ExtractionModelID,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func fromProviderDoc(d *providerDoc) *model.Provider {
	return &model.Provider{
		ID:                d.ID,
		Name:              d.Name,
		Type:              types.ProviderType(d.Type),
		APIKey:            d.APIKey,
		BaseURL:           d.BaseURL,
		Headers:           d.Headers,
		ProjectID:         d.ProjectID,
		Location:          d.Location,
		ExtractionModelID: d.ExtractionModelID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type providerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProviderRepository(client *firestore.Client) *providerRepository {
	return &providerRepository{client: client}
}

func (r *providerRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "providers")
}

func (r *providerRepository) Create(ctx context.Context, p *model.Provider) (*model.Provider, error) {
	if p.ID == "" {
		p.ID = model.NewProviderID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid provider")
	}

	docRef := r.collection().Doc(string(p.ID))
	if _, err := docRef.Set(ctx, toProviderDoc(p)); err != nil {
		return nil, goerr.Wrap(err, "failed to create provider", goerr.V("provider_id", p.ID))
	}

	return p, nil
}

func (r *providerRepository) Get(ctx context.Context, id model.ProviderID) (*model.Provider, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "provider not found", goerr.V("provider_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get provider", goerr.V("provider_id", id))
	}

	var d providerDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal provider", goerr.V("provider_id", id))
	}

	return fromProviderDoc(&d), nil
}

func (r *providerRepository) List(ctx context.Context) ([]*model.Provider, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var result []*model.Provider
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate providers")
		}

		var d providerDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal provider")
		}
		result = append(result, fromProviderDoc(&d))
	}
	return result, nil
}
