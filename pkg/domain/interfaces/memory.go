package interfaces

import (
	"context"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

// MemoryRepository defines the interface for Memory data persistence.
// Every read or mutation that takes an ownerUserID verifies ownership:
// an ID that exists but belongs to another user behaves as not found.
type MemoryRepository interface {
	// Create creates a new memory entry
	Create(ctx context.Context, memory *model.Memory) (*model.Memory, error)

	// GetByOwner retrieves a memory by ID, verifying it belongs to the owner
	GetByOwner(ctx context.Context, id model.MemoryID, ownerUserID string) (*model.Memory, error)

	// ListVisible retrieves the union of the owner's user-level memories and
	// the owner's memories scoped to the given workspace
	ListVisible(ctx context.Context, ownerUserID, workspaceID string) ([]*model.Memory, error)

	// ListByOwner retrieves all memories of a user across every scope
	ListByOwner(ctx context.Context, ownerUserID string) ([]*model.Memory, error)

	// UpdateObservation overwrites the observation (and UpdatedAt) of a
	// memory owned by the given user
	UpdateObservation(ctx context.Context, id model.MemoryID, ownerUserID, observation string) (*model.Memory, error)

	// Delete removes a memory owned by the given user
	Delete(ctx context.Context, id model.MemoryID, ownerUserID string) error
}
