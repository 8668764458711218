package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"rfp-traits/internal/config"
)

// OllamaGenerator runs prompts against a local ollama server. Local models
// receive the raw templated prompt, matching how the extraction prompts are
// built per model family.
type OllamaGenerator struct {
	llm *ollama.LLM
}

func NewOllamaGenerator(cfg *config.GeneratorConfig) (*OllamaGenerator, error) {
	llm, err := ollama.New(ollama.WithServerURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	return &OllamaGenerator{llm: llm}, nil
}

func (g *OllamaGenerator) Name() string {
	return "ollama"
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt, model string, maxNewTokens int) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithModel(model),
		llms.WithMaxTokens(maxNewTokens),
		llms.WithTemperature(0.1),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}
