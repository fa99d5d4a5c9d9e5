package ai

import (
	"fmt"

	"github.com/bryanwahyu/healthinsure-ai/internal/config"
	domai "github.com/bryanwahyu/healthinsure-ai/internal/domain/ai"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/ai/gemini"
	"github.com/bryanwahyu/healthinsure-ai/internal/infra/ai/openai"
)

// NewGenerator builds the text-generation client selected by cfg.Provider.
func NewGenerator(cfg config.AIConfig) (domai.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return gemini.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
