package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/service/extractor"
	"github.com/agentry-lab/mnemosyne/pkg/utils/errutil"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

const (
	// DefaultBatchSize caps how many conversations one cycle may process
	DefaultBatchSize = 50

	// DefaultFailureCooldown is how long a failed conversation is held back
	// before the selector may pick it up again
	DefaultFailureCooldown = time.Hour
)

// ExtractionUseCase drives one extraction cycle: select the eligible batch
// across all opted-in workspaces, then process each conversation in turn.
type ExtractionUseCase struct {
	repo            interfaces.Repository
	svc             *extractor.Service
	batchSize       int
	failureCooldown time.Duration
}

func NewExtractionUseCase(repo interfaces.Repository, svc *extractor.Service) *ExtractionUseCase {
	return &ExtractionUseCase{
		repo:            repo,
		svc:             svc,
		batchSize:       DefaultBatchSize,
		failureCooldown: DefaultFailureCooldown,
	}
}

// batchItem is a conversation joined with its workspace and the provider
// configured for that workspace.
type batchItem struct {
	conv     *model.Conversation
	ws       *model.Workspace
	provider *model.Provider
}

// RunCycle selects the eligible batch and processes it sequentially.
// Per-conversation failures are contained: one broken conversation or
// provider must not sink the rest of the batch. Sequential processing keeps
// the load on LLM providers at one in-flight extraction per fleet.
func (uc *ExtractionUseCase) RunCycle(ctx context.Context) error {
	batch, err := uc.selectBatch(ctx)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		logging.From(ctx).Debug("no conversations eligible for extraction")
		return nil
	}

	logging.From(ctx).Info("processing extraction batch", "count", len(batch))

	for _, item := range batch {
		if err := uc.svc.Process(ctx, item.conv, item.ws, item.provider); err != nil {
			errutil.Handle(ctx, err, "conversation extraction failed")
		}
		if ctx.Err() != nil {
			return goerr.Wrap(ctx.Err(), "extraction cycle interrupted")
		}
	}

	return nil
}

// selectBatch queries the eligible conversations for all extraction-enabled
// workspaces and resolves each to its workspace and provider. Conversations
// whose workspace or provider cannot be resolved are skipped with a log;
// the selector will see them again next cycle.
func (uc *ExtractionUseCase) selectBatch(ctx context.Context) ([]*batchItem, error) {
	workspaces, err := uc.repo.Workspace().ListExtractionEnabled(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list extraction-enabled workspaces")
	}
	if len(workspaces) == 0 {
		return nil, nil
	}

	wsByID := make(map[string]*model.Workspace, len(workspaces))
	wsIDs := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		wsByID[ws.ID] = ws
		wsIDs = append(wsIDs, ws.ID)
	}

	failedBefore := time.Now().UTC().Add(-uc.failureCooldown)
	convs, err := uc.repo.Conversation().ListEligibleForExtraction(ctx, wsIDs, failedBefore, uc.batchSize)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list eligible conversations")
	}

	providers := make(map[model.ProviderID]*model.Provider)
	batch := make([]*batchItem, 0, len(convs))
	for _, conv := range convs {
		ws, ok := wsByID[conv.WorkspaceID]
		if !ok {
			logging.From(ctx).Warn("eligible conversation has unknown workspace, skipping",
				"conversation", conv.ID, "workspace", conv.WorkspaceID)
			continue
		}

		provider, ok := providers[ws.ExtractionProviderID]
		if !ok {
			provider, err = uc.repo.Provider().Get(ctx, ws.ExtractionProviderID)
			if err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to resolve extraction provider",
					goerr.V("workspace", ws.ID),
					goerr.V("provider", ws.ExtractionProviderID)),
					"skipping workspace with unresolvable provider")
				continue
			}
			providers[ws.ExtractionProviderID] = provider
		}

		batch = append(batch, &batchItem{conv: conv, ws: ws, provider: provider})
	}

	return batch, nil
}
