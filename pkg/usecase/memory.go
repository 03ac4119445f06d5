package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

// MemoryUseCase exposes memory reads and explicit user-driven forgetting.
// All operations are scoped to the requesting owner; a memory belonging to
// another user behaves as if it does not exist.
type MemoryUseCase struct {
	repo interfaces.Repository
}

func NewMemoryUseCase(repo interfaces.Repository) *MemoryUseCase {
	return &MemoryUseCase{repo: repo}
}

// ListVisible returns the owner's memories visible in the given workspace:
// all user-level memories plus those scoped to that workspace.
func (uc *MemoryUseCase) ListVisible(ctx context.Context, ownerUserID, workspaceID string) ([]*model.Memory, error) {
	if ownerUserID == "" {
		return nil, goerr.New("owner user ID is required")
	}
	return uc.repo.Memory().ListVisible(ctx, ownerUserID, workspaceID)
}

// ListAll returns every memory the owner has, across all scopes
func (uc *MemoryUseCase) ListAll(ctx context.Context, ownerUserID string) ([]*model.Memory, error) {
	if ownerUserID == "" {
		return nil, goerr.New("owner user ID is required")
	}
	return uc.repo.Memory().ListByOwner(ctx, ownerUserID)
}

// Forget permanently deletes one of the owner's memories
func (uc *MemoryUseCase) Forget(ctx context.Context, id model.MemoryID, ownerUserID string) error {
	if ownerUserID == "" {
		return goerr.New("owner user ID is required")
	}
	if err := uc.repo.Memory().Delete(ctx, id, ownerUserID); err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.V("memory", id))
	}
	return nil
}
