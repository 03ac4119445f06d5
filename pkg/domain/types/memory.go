package types

import "fmt"

// EntityType categorizes what kind of fact a memory records. The values are
// lowercase because they cross the LLM boundary verbatim: the extraction
// response schema enumerates them as-is.
type EntityType string

const (
	EntityTypePreference EntityType = "preference"
	EntityTypeFact       EntityType = "fact"
	EntityTypeGoal       EntityType = "goal"
	EntityTypeConstraint EntityType = "constraint"
	EntityTypeStyle      EntityType = "style"
	EntityTypePerson     EntityType = "person"
)

// AllEntityTypes returns all valid entity types
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTypePreference,
		EntityTypeFact,
		EntityTypeGoal,
		EntityTypeConstraint,
		EntityTypeStyle,
		EntityTypePerson,
	}
}

// IsValid checks if the entity type is valid
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypePreference,
		EntityTypeFact,
		EntityTypeGoal,
		EntityTypeConstraint,
		EntityTypeStyle,
		EntityTypePerson:
		return true
	default:
		return false
	}
}

// String returns the string representation of the entity type
func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType parses a string into an EntityType
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid entity type: %s", s)
	}
	return t, nil
}

// MemoryScope declares where a memory applies: across all of the owner's
// workspaces, or only within one. Like EntityType, the values cross the LLM
// boundary verbatim.
type MemoryScope string

const (
	MemoryScopeUser      MemoryScope = "user"
	MemoryScopeWorkspace MemoryScope = "workspace"
)

// AllMemoryScopes returns all valid memory scopes
func AllMemoryScopes() []MemoryScope {
	return []MemoryScope{MemoryScopeUser, MemoryScopeWorkspace}
}

// IsValid checks if the memory scope is valid
func (s MemoryScope) IsValid() bool {
	switch s {
	case MemoryScopeUser, MemoryScopeWorkspace:
		return true
	default:
		return false
	}
}

// String returns the string representation of the memory scope
func (s MemoryScope) String() string {
	return string(s)
}

// ParseMemoryScope parses a string into a MemoryScope
func ParseMemoryScope(s string) (MemoryScope, error) {
	scope := MemoryScope(s)
	if !scope.IsValid() {
		return "", fmt.Errorf("invalid memory scope: %s", s)
	}
	return scope, nil
}
