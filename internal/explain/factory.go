// internal/explain/factory.go
package explain

import (
	"fmt"
	"time"

	"yojanamitra/internal/common/config"
	"yojanamitra/internal/common/logger"
)

// New returns the configured explanation service, or nil when explanations
// are disabled.
func New(cfg *config.Config, log logger.Logger) (Service, error) {
	timeout := time.Duration(cfg.Explanation.Timeout) * time.Millisecond

	switch cfg.Explanation.Provider {
	case "", config.ExplanationProviderNone:
		log.Info("explanations disabled, using deterministic texts", nil)
		return nil, nil

	case config.ExplanationProviderGenAI:
		return NewGenAIService(GenAIConfig{
			BaseURL:     cfg.APIs.GenAI.BaseURL,
			APIKey:      cfg.APIs.GenAI.APIKey,
			Model:       cfg.Explanation.Model,
			Timeout:     timeout,
			MaxTokens:   cfg.Explanation.MaxTokens,
			Temperature: cfg.Explanation.Temperature,
		}, log), nil

	case config.ExplanationProviderAnthropic:
		return NewAnthropicService(AnthropicConfig{
			APIKey:      cfg.APIs.Anthropic.APIKey,
			BaseURL:     cfg.APIs.Anthropic.BaseURL,
			Model:       cfg.Explanation.Model,
			Timeout:     timeout,
			MaxTokens:   cfg.Explanation.MaxTokens,
			Temperature: cfg.Explanation.Temperature,
		}, log), nil

	default:
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Explanation.Provider)
	}
}
