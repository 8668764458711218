package llm

import (
	"context"
	"fmt"
	"strings"

	"rfp-traits/internal/config"
)

// Generator is the generation collaborator. The model identifier varies per
// call because trait extraction walks a candidate list.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt, model string, maxNewTokens int) (string, error)
}

// NewGenerator creates a generator based on configuration.
func NewGenerator(cfg *config.GeneratorConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return NewOllamaGenerator(cfg)
	case "openai":
		return NewOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unknown generator provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}
