package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Workspace represents a tenant workspace. ExtractionProviderID being set is
// the opt-in flag for memory extraction; extraction never runs for a
// workspace where it is empty.
type Workspace struct {
	ID                   string
	Name                 string
	OwnerUserID          string
	ExtractionProviderID ProviderID // empty = memory extraction disabled
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewWorkspaceID generates a new UUID v4 workspace ID
func NewWorkspaceID() string {
	return uuid.New().String()
}

// ExtractionEnabled reports whether memory extraction is opted in
func (w *Workspace) ExtractionEnabled() bool {
	return w.ExtractionProviderID != ""
}

// Validate checks the workspace invariants
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return goerr.New("workspace name is required")
	}
	if w.OwnerUserID == "" {
		return goerr.New("workspace owner user ID is required")
	}
	return nil
}
