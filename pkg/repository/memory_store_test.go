package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/repository/firestore"
	"github.com/agentry-lab/mnemosyne/pkg/repository/memory"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func runMemoryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypePreference,
			EntityName:  "beverage",
			Observation: "prefers coffee over tea",
		})
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
		gt.Value(t, created.Scope()).Equal(types.MemoryScopeUser)
	})

	t.Run("Create rejects invalid memory", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  "habit",
			EntityName:  "x",
			Observation: "y",
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("GetByOwner verifies ownership", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypeFact,
			EntityName:  "name",
			Observation: "goes by Sam",
		})
		gt.NoError(t, err).Required()

		got, err := repo.Memory().GetByOwner(ctx, created.ID, "user-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Observation).Equal("goes by Sam")

		// Same ID, wrong owner: behaves as not found
		_, err = repo.Memory().GetByOwner(ctx, created.ID, "user-2")
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("user-level memory visible in any workspace", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypeFact,
			EntityName:  "name",
			Observation: "likes coffee",
		})
		gt.NoError(t, err).Required()

		for _, wsID := range []string{"ws-a", "ws-b"} {
			visible, err := repo.Memory().ListVisible(ctx, "user-1", wsID)
			gt.NoError(t, err).Required()
			gt.Array(t, visible).Length(1)
		}
	})

	t.Run("ListVisible without workspace returns user-level memories once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypePreference,
			EntityName:  "editor",
			Observation: "uses vim",
		})
		gt.NoError(t, err).Required()

		_, err = repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			WorkspaceID: "ws-a",
			EntityType:  types.EntityTypeConstraint,
			EntityName:  "deploy window",
			Observation: "no deploys on Fridays",
		})
		gt.NoError(t, err).Required()

		visible, err := repo.Memory().ListVisible(ctx, "user-1", "")
		gt.NoError(t, err).Required()
		gt.Array(t, visible).Length(1)
		gt.Value(t, visible[0].EntityName).Equal("editor")
	})

	t.Run("workspace-scoped memory excluded from other workspaces", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			WorkspaceID: "ws-a",
			EntityType:  types.EntityTypeConstraint,
			EntityName:  "deploy window",
			Observation: "no deploys on Fridays",
		})
		gt.NoError(t, err).Required()

		inA, err := repo.Memory().ListVisible(ctx, "user-1", "ws-a")
		gt.NoError(t, err).Required()
		gt.Array(t, inA).Length(1)
		gt.Value(t, inA[0].Scope()).Equal(types.MemoryScopeWorkspace)

		inB, err := repo.Memory().ListVisible(ctx, "user-1", "ws-b")
		gt.NoError(t, err).Required()
		gt.Array(t, inB).Length(0)
	})

	t.Run("ListVisible never returns another user's memories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-2",
			EntityType:  types.EntityTypeFact,
			EntityName:  "name",
			Observation: "drinks tea",
		})
		gt.NoError(t, err).Required()

		visible, err := repo.Memory().ListVisible(ctx, "user-1", "ws-a")
		gt.NoError(t, err).Required()
		gt.Array(t, visible).Length(0)
	})

	t.Run("UpdateObservation overwrites observation only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypePreference,
			EntityName:  "beverage",
			Observation: "drinks tea",
		})
		gt.NoError(t, err).Required()

		updated, err := repo.Memory().UpdateObservation(ctx, created.ID, "user-1", "drinks coffee")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Observation).Equal("drinks coffee")
		gt.Value(t, updated.EntityName).Equal("beverage")
		gt.Bool(t, updated.UpdatedAt.Before(created.UpdatedAt)).False()

		_, err = repo.Memory().UpdateObservation(ctx, created.ID, "user-2", "hijacked")
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Delete verifies ownership", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID: "user-1",
			EntityType:  types.EntityTypeGoal,
			EntityName:  "fitness",
			Observation: "training for a marathon",
		})
		gt.NoError(t, err).Required()

		err = repo.Memory().Delete(ctx, created.ID, "user-2")
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()

		gt.NoError(t, repo.Memory().Delete(ctx, created.ID, "user-1"))

		_, err = repo.Memory().GetByOwner(ctx, created.ID, "user-1")
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryMemoryRepository(t *testing.T) {
	runMemoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreMemoryRepository(t *testing.T) {
	runMemoryRepositoryTest(t, newFirestoreTestRepo)
}
