package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/types"
)

// ProviderID is a UUID-based identifier for Provider
type ProviderID string

// NewProviderID generates a new UUID v4 ProviderID
func NewProviderID() ProviderID {
	return ProviderID(uuid.New().String())
}

// Provider holds the credentials and model configuration of an LLM provider.
// ExtractionModelID is the model used for memory extraction, which may
// differ from the model a workspace uses for live chat.
type Provider struct {
	ID      ProviderID
	Name    string
	Type    types.ProviderType
	APIKey  string
	BaseURL string            // optional, for OpenAI-compatible endpoints
	Headers map[string]string // optional extra HTTP headers

	// Gemini runs on Vertex AI and authenticates by project, not API key
	ProjectID string
	Location  string

	ExtractionModelID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the provider invariants per provider type
func (p *Provider) Validate() error {
	if !p.Type.IsValid() {
		return goerr.New("invalid provider type", goerr.V("type", p.Type))
	}
	if p.ExtractionModelID == "" {
		return goerr.New("extraction model ID is required", goerr.V("provider", p.ID))
	}
	switch p.Type {
	case types.ProviderTypeGemini:
		if p.ProjectID == "" {
			return goerr.New("gemini provider requires project ID", goerr.V("provider", p.ID))
		}
	default:
		if p.APIKey == "" {
			return goerr.New("provider API key is required", goerr.V("provider", p.ID))
		}
	}
	return nil
}
