package model_test

import (
	"testing"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestMemoryScope(t *testing.T) {
	t.Run("empty workspace ID means user scope", func(t *testing.T) {
		m := &model.Memory{OwnerUserID: "u1"}
		gt.Value(t, m.Scope()).Equal(types.MemoryScopeUser)
	})

	t.Run("workspace ID set means workspace scope", func(t *testing.T) {
		m := &model.Memory{OwnerUserID: "u1", WorkspaceID: "ws1"}
		gt.Value(t, m.Scope()).Equal(types.MemoryScopeWorkspace)
	})
}

func TestMemoryValidate(t *testing.T) {
	valid := func() *model.Memory {
		return &model.Memory{
			ID:          model.NewMemoryID(),
			OwnerUserID: "u1",
			EntityType:  types.EntityTypePreference,
			EntityName:  "beverage",
			Observation: "prefers coffee over tea",
		}
	}

	t.Run("valid memory passes", func(t *testing.T) {
		gt.NoError(t, valid().Validate())
	})

	t.Run("missing owner fails", func(t *testing.T) {
		m := valid()
		m.OwnerUserID = ""
		gt.Value(t, m.Validate()).NotNil()
	})

	t.Run("invalid entity type fails", func(t *testing.T) {
		m := valid()
		m.EntityType = "habit"
		gt.Value(t, m.Validate()).NotNil()
	})

	t.Run("empty observation fails", func(t *testing.T) {
		m := valid()
		m.Observation = ""
		gt.Value(t, m.Validate()).NotNil()
	})
}

func TestNewMemoryValidate(t *testing.T) {
	t.Run("valid item passes", func(t *testing.T) {
		n := &model.NewMemory{
			EntityType:  types.EntityTypeFact,
			EntityName:  "name",
			Observation: "likes coffee",
			Scope:       types.MemoryScopeUser,
		}
		gt.NoError(t, n.Validate())
	})

	t.Run("unknown scope from LLM fails", func(t *testing.T) {
		n := &model.NewMemory{
			EntityType:  types.EntityTypeFact,
			EntityName:  "name",
			Observation: "likes coffee",
			Scope:       "team",
		}
		gt.Value(t, n.Validate()).NotNil()
	})
}
