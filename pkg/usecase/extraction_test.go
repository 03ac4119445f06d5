package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
	"github.com/agentry-lab/mnemosyne/pkg/repository/memory"
	"github.com/agentry-lab/mnemosyne/pkg/service/extractor"
	"github.com/agentry-lab/mnemosyne/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{`{"new":[],"updates":[],"deletes":[]}`}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	mu      sync.Mutex
	calls   int
	respond func(call int) (*gollem.Response, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			c.mu.Lock()
			c.calls++
			call := c.calls
			c.mu.Unlock()
			if c.respond != nil {
				return c.respond(call)
			}
			return &gollem.Response{Texts: []string{`{"new":[],"updates":[],"deletes":[]}`}}, nil
		},
	}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func (c *mockLLMClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fixture struct {
	repo interfaces.Repository
	ws   *model.Workspace
	llm  *mockLLMClient
	uc   *usecase.UseCases
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()

	provider, err := repo.Provider().Create(ctx, &model.Provider{
		Name:              "team-openai",
		Type:              types.ProviderTypeOpenAI,
		APIKey:            "sk-test",
		ExtractionModelID: "gpt-4o-mini",
	})
	gt.NoError(t, err).Required()

	ws, err := repo.Workspace().Create(ctx, &model.Workspace{
		Name:                 "Acme Eng",
		OwnerUserID:          "owner-1",
		ExtractionProviderID: provider.ID,
	})
	gt.NoError(t, err).Required()

	llm := &mockLLMClient{}
	svc, err := extractor.New(repo, func(ctx context.Context, p *model.Provider) (gollem.LLMClient, error) {
		return llm, nil
	})
	gt.NoError(t, err).Required()

	return &fixture{
		repo: repo,
		ws:   ws,
		llm:  llm,
		uc:   usecase.New(repo, svc, opts...),
	}
}

func (f *fixture) createConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv, err := f.repo.Conversation().Create(context.Background(), &model.Conversation{
		WorkspaceID: f.ws.ID,
		Messages: []model.Message{
			{Role: types.MessageRoleUser, Parts: []model.MessagePart{model.TextPart("I prefer dark mode")}},
			{Role: types.MessageRoleAssistant, Parts: []model.MessagePart{model.TextPart("Noted")}},
		},
	})
	gt.NoError(t, err).Required()
	return conv
}

func (f *fixture) status(t *testing.T, id model.ConversationID) types.ExtractionStatus {
	t.Helper()
	conv, err := f.repo.Conversation().Get(context.Background(), id)
	gt.NoError(t, err).Required()
	return conv.ExtractionStatus
}

func TestRunCycle_NoWorkspaces(t *testing.T) {
	repo := memory.New()
	svc, err := extractor.New(repo, func(ctx context.Context, p *model.Provider) (gollem.LLMClient, error) {
		return &mockLLMClient{}, nil
	})
	gt.NoError(t, err).Required()

	uc := usecase.New(repo, svc)
	gt.NoError(t, uc.Extraction.RunCycle(context.Background()))
}

func TestRunCycle_ExtractsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.llm.respond = func(call int) (*gollem.Response, error) {
		return &gollem.Response{Texts: []string{
			`{"new":[{"entity_type":"preference","entity_name":"theme","observation":"prefers dark mode","scope":"user"}],"updates":[],"deletes":[]}`,
		}}, nil
	}

	c1 := f.createConversation(t)
	c2 := f.createConversation(t)

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))

	gt.Value(t, f.status(t, c1.ID)).Equal(types.ExtractionStatusCompleted)
	gt.Value(t, f.status(t, c2.ID)).Equal(types.ExtractionStatusCompleted)
	gt.Number(t, f.llm.callCount()).Equal(2)

	memories, err := f.repo.Memory().ListByOwner(ctx, "owner-1")
	gt.NoError(t, err).Required()
	gt.Array(t, memories).Length(2)
}

func TestRunCycle_CompletedNotReprocessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.createConversation(t)
	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Value(t, f.status(t, c1.ID)).Equal(types.ExtractionStatusCompleted)
	gt.Number(t, f.llm.callCount()).Equal(1)

	// second cycle finds nothing to do
	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(1)
}

func TestRunCycle_FailureContained(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// first conversation in the batch fails, the rest still run
	f.llm.respond = func(call int) (*gollem.Response, error) {
		if call == 1 {
			return nil, goerr.New("provider unavailable")
		}
		return &gollem.Response{Texts: []string{`{"new":[],"updates":[],"deletes":[]}`}}, nil
	}

	c1 := f.createConversation(t)
	c2 := f.createConversation(t)

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(2)

	statuses := []types.ExtractionStatus{f.status(t, c1.ID), f.status(t, c2.ID)}
	var failed, completed int
	for _, st := range statuses {
		switch st {
		case types.ExtractionStatusFailed:
			failed++
		case types.ExtractionStatusCompleted:
			completed++
		}
	}
	gt.Number(t, failed).Equal(1)
	gt.Number(t, completed).Equal(1)
}

func TestRunCycle_FailureCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv := f.createConversation(t)

	// mark as freshly failed
	gt.NoError(t, f.repo.Conversation().UpdateExtractionStatus(ctx,
		conv.ID, types.ExtractionStatusFailed, time.Now().UTC()))

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(0)
	gt.Value(t, f.status(t, conv.ID)).Equal(types.ExtractionStatusFailed)

	// backdate the attempt beyond the cooldown and it is retried
	gt.NoError(t, f.repo.Conversation().UpdateExtractionStatus(ctx,
		conv.ID, types.ExtractionStatusFailed, time.Now().UTC().Add(-2*time.Hour)))

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(1)
	gt.Value(t, f.status(t, conv.ID)).Equal(types.ExtractionStatusCompleted)
}

func TestRunCycle_BatchSizeCap(t *testing.T) {
	f := newFixture(t, usecase.WithBatchSize(2))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.createConversation(t)
	}

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(2)

	// the remainder drains over subsequent cycles
	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(5)
}

func TestRunCycle_DisabledWorkspaceIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a workspace without an extraction provider never contributes work
	disabled, err := f.repo.Workspace().Create(ctx, &model.Workspace{
		Name:        "No Extraction",
		OwnerUserID: "owner-2",
	})
	gt.NoError(t, err).Required()

	conv, err := f.repo.Conversation().Create(ctx, &model.Conversation{
		WorkspaceID: disabled.ID,
		Messages: []model.Message{
			{Role: types.MessageRoleUser, Parts: []model.MessagePart{model.TextPart("remember this")}},
			{Role: types.MessageRoleAssistant, Parts: []model.MessagePart{model.TextPart("ok")}},
		},
	})
	gt.NoError(t, err).Required()

	gt.NoError(t, f.uc.Extraction.RunCycle(ctx))
	gt.Number(t, f.llm.callCount()).Equal(0)
	gt.Value(t, f.status(t, conv.ID)).Equal(types.ExtractionStatusUnset)
}

func TestRunCycle_UnresolvableProviderSkipped(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	ws, err := repo.Workspace().Create(ctx, &model.Workspace{
		Name:                 "Orphaned",
		OwnerUserID:          "owner-1",
		ExtractionProviderID: model.ProviderID("no-such-provider"),
	})
	gt.NoError(t, err).Required()

	_, err = repo.Conversation().Create(ctx, &model.Conversation{
		WorkspaceID: ws.ID,
		Messages: []model.Message{
			{Role: types.MessageRoleUser, Parts: []model.MessagePart{model.TextPart("hi")}},
			{Role: types.MessageRoleAssistant, Parts: []model.MessagePart{model.TextPart("hello")}},
		},
	})
	gt.NoError(t, err).Required()

	llm := &mockLLMClient{}
	svc, err := extractor.New(repo, func(ctx context.Context, p *model.Provider) (gollem.LLMClient, error) {
		return llm, nil
	})
	gt.NoError(t, err).Required()

	uc := usecase.New(repo, svc)
	gt.NoError(t, uc.Extraction.RunCycle(ctx))
	gt.Number(t, llm.callCount()).Equal(0)
}
