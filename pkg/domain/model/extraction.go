package model

import (
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// ExtractionResult is the structured output of one extraction LLM call.
// The JSON tags are the wire shape the response schema declares.
type ExtractionResult struct {
	New     []NewMemory    `json:"new"`
	Updates []MemoryUpdate `json:"updates"`
	Deletes []MemoryID     `json:"deletes"`
}

// NewMemory is a genuinely new fact reported by the LLM
type NewMemory struct {
	EntityType  types.EntityType  `json:"entity_type"`
	EntityName  string            `json:"entity_name"`
	Observation string            `json:"observation"`
	Scope       types.MemoryScope `json:"scope"`
}

// Validate checks a new memory item from the LLM before it is persisted
func (n *NewMemory) Validate() error {
	if !n.EntityType.IsValid() {
		return ErrInvalidEntityType
	}
	if !n.Scope.IsValid() {
		return ErrInvalidMemoryScope
	}
	if n.EntityName == "" || n.Observation == "" {
		return ErrEmptyMemoryContent
	}
	return nil
}

// MemoryUpdate is a correction to an existing memory, referenced by ID
type MemoryUpdate struct {
	ID          MemoryID `json:"id"`
	Observation string   `json:"observation"`
}

// IsEmpty reports whether the result carries no changes at all
func (r *ExtractionResult) IsEmpty() bool {
	return len(r.New) == 0 && len(r.Updates) == 0 && len(r.Deletes) == 0
}
