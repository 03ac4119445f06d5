package interfaces

import (
	"context"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

// WorkspaceRepository defines the interface for Workspace persistence
type WorkspaceRepository interface {
	// Create creates a new workspace
	Create(ctx context.Context, ws *model.Workspace) (*model.Workspace, error)

	// Get retrieves a workspace by ID
	Get(ctx context.Context, id string) (*model.Workspace, error)

	// List retrieves all workspaces
	List(ctx context.Context) ([]*model.Workspace, error)

	// ListExtractionEnabled retrieves workspaces opted in to memory
	// extraction (non-empty extraction provider ID)
	ListExtractionEnabled(ctx context.Context) ([]*model.Workspace, error)
}
