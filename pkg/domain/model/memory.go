package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// MemoryID is a UUID-based identifier for Memory
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Memory is a durable fact about a user, derived from their conversations.
// WorkspaceID empty means the memory applies to the owner across all
// workspaces; set, it is valid only within that workspace. Scope is always
// derived from WorkspaceID, never stored separately.
type Memory struct {
	ID             MemoryID
	OwnerUserID    string
	WorkspaceID    string         // empty = user-level
	ConversationID ConversationID // provenance, may be empty
	EntityType     types.EntityType
	EntityName     string
	Observation    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Scope returns the memory scope derived from WorkspaceID
func (m *Memory) Scope() types.MemoryScope {
	if m.WorkspaceID == "" {
		return types.MemoryScopeUser
	}
	return types.MemoryScopeWorkspace
}

// Validate checks the memory invariants
func (m *Memory) Validate() error {
	if m.OwnerUserID == "" {
		return goerr.New("memory owner user ID is required")
	}
	if !m.EntityType.IsValid() {
		return goerr.New("invalid memory entity type", goerr.V("entity_type", m.EntityType))
	}
	if m.EntityName == "" {
		return goerr.New("memory entity name is required")
	}
	if m.Observation == "" {
		return goerr.New("memory observation is required")
	}
	return nil
}
