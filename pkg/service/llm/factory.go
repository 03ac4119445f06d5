package llm

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"

	"github.com/agentry-lab/mnemosyne/pkg/domain/model"
	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// extractionTemperature keeps the output deterministic and fact-oriented;
// creative variance is undesirable when deriving memories.
const extractionTemperature = 0.2

// NewClient resolves a provider record to a gollem LLM client configured
// with the provider's extraction model.
func NewClient(ctx context.Context, p *model.Provider) (gollem.LLMClient, error) {
	if err := p.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid provider configuration", goerr.V("provider_id", p.ID))
	}

	switch p.Type {
	case types.ProviderTypeOpenAI:
		opts := []openai.Option{
			openai.WithModel(p.ExtractionModelID),
			openai.WithTemperature(extractionTemperature),
		}
		if p.BaseURL != "" {
			// OpenAI-compatible endpoints (vLLM, LiteLLM, gateways)
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		if len(p.Headers) > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{
				Transport: &headerTransport{headers: p.Headers},
			}))
		}
		client, err := openai.New(ctx, p.APIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client", goerr.V("provider_id", p.ID))
		}
		return client, nil

	case types.ProviderTypeAnthropic:
		client, err := claude.New(ctx, p.APIKey,
			claude.WithModel(p.ExtractionModelID),
			claude.WithTemperature(extractionTemperature),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Anthropic client", goerr.V("provider_id", p.ID))
		}
		return client, nil

	case types.ProviderTypeGemini:
		client, err := gemini.New(ctx, p.ProjectID, p.Location,
			gemini.WithModel(p.ExtractionModelID),
			gemini.WithTemperature(extractionTemperature),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client", goerr.V("provider_id", p.ID))
		}
		return client, nil

	default:
		return nil, goerr.New("unsupported provider type",
			goerr.V("provider_id", p.ID), goerr.V("type", p.Type))
	}
}

// headerTransport attaches provider-configured headers to every request
type headerTransport struct {
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return http.DefaultTransport.RoundTrip(clone)
}
