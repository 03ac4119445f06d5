package extractor

import (
	"context"

	"github.com/m-mizutani/gollem"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
)

// ClientFactory resolves a provider record to an LLM client. Injected so
// tests can substitute a mock without touching provider credentials.
type ClientFactory func(ctx context.Context, p *model.Provider) (gollem.LLMClient, error)

// minTranscriptMessages is the minimum conversation length worth extracting
// from. A one-sided conversation carries no extractable signal.
const minTranscriptMessages = 2
