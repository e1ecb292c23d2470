package ai

import "fmt"

// DynamicConfig holds AI provider configuration, with runtime getters
// for the Ollama settings so the settings API can repoint the provider
// without a restart.
type DynamicConfig struct {
	Provider     ProviderType
	GeminiAPIKey string

	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewDescriptionServiceWithDynamicConfig creates a DescriptionService
// whose Ollama endpoint follows the runtime settings.
func NewDescriptionServiceWithDynamicConfig(cfg DynamicConfig) (DescriptionService, error) {
	ollama := NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiProvider(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return ollama, nil

	default:
		if cfg.GeminiAPIKey != "" {
			return NewFallbackService(NewGeminiProvider(cfg.GeminiAPIKey), ollama), nil
		}
		return ollama, nil
	}
}
