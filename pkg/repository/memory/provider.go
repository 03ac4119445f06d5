package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

type providerRepository struct {
	mu        sync.Mutex
	providers map[model.ProviderID]*model.Provider
}

func newProviderRepository() *providerRepository {
	return &providerRepository{
		providers: make(map[model.ProviderID]*model.Provider),
	}
}

func cloneProvider(p *model.Provider) *model.Provider {
	c := *p
	if p.Headers != nil {
		c.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			c.Headers[k] = v
		}
	}
	return &c
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = cloneProvider(p)

	return p, nil
}

func (r *providerRepository) Get(ctx context.Context, id model.ProviderID) (*model.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "provider not found", goerr.V("provider_id", id))
	}
	return cloneProvider(p), nil
}

func (r *providerRepository) List(ctx context.Context) ([]*model.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, cloneProvider(p))
	}
	return result, nil
}
