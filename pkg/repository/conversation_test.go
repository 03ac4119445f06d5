package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/repository/memory"
)

func newTestConversation(wsID string) *model.Conversation {
	return &model.Conversation{
		WorkspaceID: wsID,
		Messages: []model.Message{
			{Role: types.MessageRoleUser, Parts: []model.MessagePart{model.TextPart("hi")}},
			{Role: types.MessageRoleAssistant, Parts: []model.MessagePart{model.TextPart("hello")}},
		},
	}
}

func runConversationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	cooldownCutoff := func() time.Time {
		return time.Now().UTC().Add(-time.Hour)
	}

	t.Run("Create and Get round-trips messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv := newTestConversation("ws-1")
		conv.Messages[0].Parts = append(conv.Messages[0].Parts,
			model.MessagePart{Type: types.MessagePartTypeFile, FileName: "notes.txt"})

		created, err := repo.Conversation().Create(ctx, conv)
		gt.NoError(t, err).Required()

		got, err := repo.Conversation().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Messages).Length(2)
		gt.Array(t, got.Messages[0].Parts).Length(2)
		gt.Value(t, got.Messages[0].Parts[1].Type).Equal(types.MessagePartTypeFile)
		gt.Value(t, got.ExtractionStatus).Equal(types.ExtractionStatusUnset)
	})

	t.Run("returned conversation does not alias the stored record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()

		got, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		got.Messages[0].Parts[0].Text = "tampered"

		again, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Messages[0].Parts[0].Text).Equal("hi")
	})

	t.Run("unset and pending conversations are eligible", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		unset, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()

		pending, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Conversation().UpdateExtractionStatus(ctx,
			pending.ID, types.ExtractionStatusPending, time.Now().UTC()))

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 50)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(2)

		ids := map[model.ConversationID]bool{}
		for _, c := range eligible {
			ids[c.ID] = true
		}
		gt.Bool(t, ids[unset.ID]).True()
		gt.Bool(t, ids[pending.ID]).True()
	})

	t.Run("processing and completed conversations are excluded", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, st := range []types.ExtractionStatus{
			types.ExtractionStatusProcessing,
			types.ExtractionStatusCompleted,
		} {
			conv, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Conversation().UpdateExtractionStatus(ctx,
				conv.ID, st, time.Now().UTC()))
		}

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 50)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(0)
	})

	t.Run("failed conversation excluded before cooldown, included after", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()

		// Failed just now: still cooling down
		gt.NoError(t, repo.Conversation().UpdateExtractionStatus(ctx,
			conv.ID, types.ExtractionStatusFailed, time.Now().UTC()))

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 50)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(0)

		// Backdate the attempt beyond the cooldown window
		gt.NoError(t, repo.Conversation().UpdateExtractionStatus(ctx,
			conv.ID, types.ExtractionStatusFailed, time.Now().UTC().Add(-2*time.Hour)))

		eligible, err = repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 50)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(1)
		gt.Value(t, eligible[0].ID).Equal(conv.ID)
	})

	t.Run("conversations outside given workspaces are excluded", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Conversation().Create(ctx, newTestConversation("ws-other"))
		gt.NoError(t, err).Required()

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 50)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(0)
	})

	t.Run("other-workspace conversations do not crowd out the cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		target, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()

		// Fresher unset conversations in a workspace that never enabled
		// extraction must not occupy the capped result.
		for i := 0; i < 4; i++ {
			time.Sleep(2 * time.Millisecond)
			_, err := repo.Conversation().Create(ctx, newTestConversation("ws-other"))
			gt.NoError(t, err).Required()
		}

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 2)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(1)
		gt.Value(t, eligible[0].ID).Equal(target.ID)
	})

	t.Run("result is capped and ordered most recently updated first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var last *model.Conversation
		for i := 0; i < 5; i++ {
			conv, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
			gt.NoError(t, err).Required()
			last = conv
			time.Sleep(2 * time.Millisecond)
		}

		eligible, err := repo.Conversation().ListEligibleForExtraction(ctx,
			[]string{"ws-1"}, cooldownCutoff(), 3)
		gt.NoError(t, err).Required()
		gt.Array(t, eligible).Length(3)
		gt.Value(t, eligible[0].ID).Equal(last.ID)
		gt.Bool(t, eligible[0].UpdatedAt.Before(eligible[1].UpdatedAt)).False()
		gt.Bool(t, eligible[1].UpdatedAt.Before(eligible[2].UpdatedAt)).False()
	})

	t.Run("UpdateExtractionStatus stamps the attempt time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().Create(ctx, newTestConversation("ws-1"))
		gt.NoError(t, err).Required()

		attemptedAt := time.Now().UTC().Truncate(time.Millisecond)
		gt.NoError(t, repo.Conversation().UpdateExtractionStatus(ctx,
			conv.ID, types.ExtractionStatusProcessing, attemptedAt))

		got, err := repo.Conversation().Get(ctx, conv.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ExtractionStatus).Equal(types.ExtractionStatusProcessing)
		gt.Bool(t, got.LastExtractionAttemptAt.Equal(attemptedAt)).True()
	})

	t.Run("UpdateExtractionStatus on missing conversation fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Conversation().UpdateExtractionStatus(ctx,
			"no-such-conversation", types.ExtractionStatusCompleted, time.Now().UTC())
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, newFirestoreTestRepo)
}
