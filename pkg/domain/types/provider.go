package types

import "fmt"

// ProviderType identifies the LLM provider backing a Provider record
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeGemini    ProviderType = "gemini"
)

// AllProviderTypes returns all valid provider types
func AllProviderTypes() []ProviderType {
	return []ProviderType{
		ProviderTypeOpenAI,
		ProviderTypeAnthropic,
		ProviderTypeGemini,
	}
}

// IsValid checks if the provider type is valid
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderTypeOpenAI, ProviderTypeAnthropic, ProviderTypeGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider type
func (t ProviderType) String() string {
	return string(t)
}

// ParseProviderType parses a string into a ProviderType
func ParseProviderType(s string) (ProviderType, error) {
	t := ProviderType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid provider type: %s", s)
	}
	return t, nil
}
