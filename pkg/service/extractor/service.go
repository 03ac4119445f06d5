package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

// Service derives memory changes from one conversation and reconciles them
// into the memory store, tracking the conversation's processing status.
type Service struct {
	repo      interfaces.Repository
	newClient ClientFactory
}

// New creates the extraction pipeline service
func New(repo interfaces.Repository, factory ClientFactory) (*Service, error) {
	if repo == nil {
		return nil, goerr.New("repository is required")
	}
	if factory == nil {
		return nil, goerr.New("LLM client factory is required")
	}
	return &Service{repo: repo, newClient: factory}, nil
}

// Process runs the pipeline for a single conversation. A returned error
// means the conversation was marked failed (or could not be marked at all);
// the caller logs it and moves on to the next item in the batch.
func (s *Service) Process(ctx context.Context, conv *model.Conversation, ws *model.Workspace, provider *model.Provider) error {
	logger := logging.From(ctx)

	if err := s.setStatus(ctx, conv.ID, types.ExtractionStatusProcessing); err != nil {
		return goerr.Wrap(err, "failed to mark conversation processing", goerr.V("conversation_id", conv.ID))
	}

	// A one-sided conversation carries no extractable signal: no LLM call
	if len(conv.Messages) < minTranscriptMessages {
		logger.Debug("conversation too short to extract", "conversation_id", conv.ID)
		return s.setStatus(ctx, conv.ID, types.ExtractionStatusCompleted)
	}

	// Memories are always attributed to the workspace owner
	ownerUserID := ws.OwnerUserID

	existing, err := s.repo.Memory().ListVisible(ctx, ownerUserID, ws.ID)
	if err != nil {
		s.markFailed(ctx, conv.ID)
		return goerr.Wrap(err, "failed to load existing memories",
			goerr.V("conversation_id", conv.ID), goerr.V("owner_user_id", ownerUserID))
	}

	result, err := s.generate(ctx, conv, existing, provider)
	if err != nil {
		s.markFailed(ctx, conv.ID)
		return goerr.Wrap(err, "extraction LLM call failed",
			goerr.V("conversation_id", conv.ID), goerr.V("provider_id", provider.ID))
	}

	if err := s.merge(ctx, conv, ws, result); err != nil {
		s.markFailed(ctx, conv.ID)
		return goerr.Wrap(err, "failed to merge extraction result", goerr.V("conversation_id", conv.ID))
	}

	return s.setStatus(ctx, conv.ID, types.ExtractionStatusCompleted)
}

func (s *Service) setStatus(ctx context.Context, id model.ConversationID, status types.ExtractionStatus) error {
	return s.repo.Conversation().UpdateExtractionStatus(ctx, id, status, time.Now().UTC())
}

// markFailed is best-effort: the pipeline is already unwinding an error and
// a failed stamp that cannot be written only delays the retry.
func (s *Service) markFailed(ctx context.Context, id model.ConversationID) {
	if err := s.setStatus(ctx, id, types.ExtractionStatusFailed); err != nil {
		logging.From(ctx).Error("failed to mark conversation failed",
			"conversation_id", id, "error", err.Error())
	}
}

// generate invokes the workspace's configured extraction model and parses
// the structured response.
func (s *Service) generate(ctx context.Context, conv *model.Conversation, existing []*model.Memory, provider *model.Provider) (*model.ExtractionResult, error) {
	client, err := s.newClient(ctx, provider)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM client")
	}

	session, err := client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(responseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt()),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(conv, existing)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(resp.Texts[0]), &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	return &result, nil
}

// merge applies the extraction result. Items referencing an id that does not
// belong to the owner are skipped with a warning: the LLM may hallucinate or
// echo a cross-tenant id, and the id is never trusted without the ownership
// re-read. Store-level failures abort the merge.
func (s *Service) merge(ctx context.Context, conv *model.Conversation, ws *model.Workspace, result *model.ExtractionResult) error {
	logger := logging.From(ctx)
	ownerUserID := ws.OwnerUserID

	for _, item := range result.New {
		if err := item.Validate(); err != nil {
			logger.Warn("skipping malformed new memory from LLM",
				"conversation_id", conv.ID, "error", err.Error())
			continue
		}

		workspaceID := ""
		if item.Scope == types.MemoryScopeWorkspace {
			workspaceID = ws.ID
		}

		if _, err := s.repo.Memory().Create(ctx, &model.Memory{
			OwnerUserID:    ownerUserID,
			WorkspaceID:    workspaceID,
			ConversationID: conv.ID,
			EntityType:     item.EntityType,
			EntityName:     item.EntityName,
			Observation:    item.Observation,
		}); err != nil {
			return goerr.Wrap(err, "failed to create memory")
		}
	}

	for _, item := range result.Updates {
		if _, err := s.repo.Memory().UpdateObservation(ctx, item.ID, ownerUserID, item.Observation); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				logger.Warn("skipping update of memory not owned by conversation owner",
					"conversation_id", conv.ID, "memory_id", item.ID, "owner_user_id", ownerUserID)
				continue
			}
			return goerr.Wrap(err, "failed to update memory", goerr.V("memory_id", item.ID))
		}
	}

	for _, id := range result.Deletes {
		if err := s.repo.Memory().Delete(ctx, id, ownerUserID); err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				logger.Warn("skipping delete of memory not owned by conversation owner",
					"conversation_id", conv.ID, "memory_id", id, "owner_user_id", ownerUserID)
				continue
			}
			return goerr.Wrap(err, "failed to delete memory", goerr.V("memory_id", id))
		}
	}

	return nil
}
