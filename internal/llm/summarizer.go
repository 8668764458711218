package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const summarizePrompt = "You will receive excerpts from a procurement document. Summarize the content in <=120 words focusing on details " +
	"relevant to the trait \"%s\". Use concise sentences and avoid adding assumptions.\n\n" +
	"CONTEXT:\n%s\n\nSUMMARY:"

const summarizeInputLimit = 4000 // characters
const summarizeMaxTokens = 200

// Summarizer produces trait-focused chunk summaries. Failures degrade to an
// empty summary; callers fall back to the raw evidence snippet.
type Summarizer struct {
	generator Generator
	model     string
}

func NewSummarizer(generator Generator, model string) *Summarizer {
	return &Summarizer{generator: generator, model: model}
}

func (s *Summarizer) Summarize(ctx context.Context, text, traitFocus string) string {
	snippet := strings.TrimSpace(text)
	if snippet == "" {
		return ""
	}
	if len(snippet) > summarizeInputLimit {
		if runes := []rune(snippet); len(runes) > summarizeInputLimit {
			snippet = string(runes[:summarizeInputLimit])
		}
	}

	prompt := fmt.Sprintf(summarizePrompt, traitFocus, snippet)
	summary, err := s.generator.Generate(ctx, prompt, s.model, summarizeMaxTokens)
	if err != nil {
		log.Warn().Err(err).Str("trait", traitFocus).Msg("Summarization failed")
		return ""
	}
	return strings.TrimSpace(summary)
}
