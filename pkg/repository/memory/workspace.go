package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

type workspaceRepository struct {
	mu         sync.Mutex
	workspaces map[string]*model.Workspace
}

func newWorkspaceRepository() *workspaceRepository {
	return &workspaceRepository{
		workspaces: make(map[string]*model.Workspace),
	}
}

func cloneWorkspace(w *model.Workspace) *model.Workspace {
	c := *w
	return &c
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[ws.ID] = cloneWorkspace(ws)

	return ws, nil
}

func (r *workspaceRepository) Get(ctx context.Context, id string) (*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "workspace not found", goerr.V("workspace_id", id))
	}
	return cloneWorkspace(ws), nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		result = append(result, cloneWorkspace(ws))
	}
	return result, nil
}

func (r *workspaceRepository) ListExtractionEnabled(ctx context.Context) ([]*model.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Workspace
	for _, ws := range r.workspaces {
		if ws.ExtractionEnabled() {
			result = append(result, cloneWorkspace(ws))
		}
	}
	return result, nil
}
