package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

type memoryRepository struct {
	mu       sync.Mutex
	memories map[model.MemoryID]*model.Memory
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		memories: make(map[model.MemoryID]*model.Memory),
	}
}

func cloneMemory(m *model.Memory) *model.Memory {
	c := *m
	return &c
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.memories[mem.ID] = cloneMemory(mem)

	return mem, nil
}

func (r *memoryRepository) GetByOwner(ctx context.Context, id model.MemoryID, ownerUserID string) (*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.memories[id]
	if !ok || mem.OwnerUserID != ownerUserID {
		return nil, goerr.Wrap(ErrNotFound, "memory not found",
			goerr.V("memory_id", id), goerr.V("owner_user_id", ownerUserID))
	}
	return cloneMemory(mem), nil
}

func (r *memoryRepository) ListVisible(ctx context.Context, ownerUserID, workspaceID string) ([]*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Memory
	for _, mem := range r.memories {
		if mem.OwnerUserID != ownerUserID {
			continue
		}
		if mem.WorkspaceID == "" || mem.WorkspaceID == workspaceID {
			result = append(result, cloneMemory(mem))
		}
	}
	return result, nil
}

func (r *memoryRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Memory
	for _, mem := range r.memories {
		if mem.OwnerUserID == ownerUserID {
			result = append(result, cloneMemory(mem))
		}
	}
	return result, nil
}

func (r *memoryRepository) UpdateObservation(ctx context.Context, id model.MemoryID, ownerUserID, observation string) (*model.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.memories[id]
	if !ok || mem.OwnerUserID != ownerUserID {
		return nil, goerr.Wrap(ErrNotFound, "memory not found",
			goerr.V("memory_id", id), goerr.V("owner_user_id", ownerUserID))
	}

	mem.Observation = observation
	mem.UpdatedAt = time.Now().UTC()
	return cloneMemory(mem), nil
}

func (r *memoryRepository) Delete(ctx context.Context, id model.MemoryID, ownerUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.memories[id]
	if !ok || mem.OwnerUserID != ownerUserID {
		return goerr.Wrap(ErrNotFound, "memory not found",
			goerr.V("memory_id", id), goerr.V("owner_user_id", ownerUserID))
	}

	delete(r.memories, id)
	return nil
}
