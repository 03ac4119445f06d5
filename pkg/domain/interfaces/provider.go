package interfaces

import (
	"context"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

// ProviderRepository defines the interface for Provider persistence
type ProviderRepository interface {
	// Create creates a new provider
	Create(ctx context.Context, p *model.Provider) (*model.Provider, error)

	// Get retrieves a provider by ID
	Get(ctx context.Context, id model.ProviderID) (*model.Provider, error)

	// List retrieves all providers
	List(ctx context.Context) ([]*model.Provider, error)
}
