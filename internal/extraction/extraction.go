package extraction

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"rfp-traits/internal/llm"
	"rfp-traits/internal/traits"
)

const systemPrompt = "You are an expert government procurement analyst. Read the provided summary and evidence carefully. " +
	"Respond with the requested value only. Do not add commentary or extra sentences. " +
	"If the answer is not explicitly stated, reply with 'N/A'."

// llama3Markers selects the chat-turn template family by substring match on
// the model identifier; every other model gets the instruction-block family.
var llama3Markers = []string{"llama-3", "llama3"}

// noisePatterns strips the control markers of both template families plus the
// literal Context: label from raw model output.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[/?INST\]`),
	regexp.MustCompile(`(?i)<\|/?begin_of_text\|>`),
	regexp.MustCompile(`(?i)<\|/?eot_id\|>`),
	regexp.MustCompile(`(?i)<\|start_header_id\|>[^<]+<\|end_header_id\|>`),
	regexp.MustCompile(`(?i)<<SYS>>`),
	regexp.MustCompile(`(?i)<</SYS>>`),
	regexp.MustCompile(`(?i)\bContext:\b`),
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Result is one trait extraction outcome. Confidence, pages, and evidence are
// reserved for richer response parsing and stay nil here; the pipeline fills
// in defaults from the supporting chunks.
type Result struct {
	Value      *string
	Confidence *float64
	Pages      []int
	Evidence   []string
	Details    map[string]any
}

// Orchestrator extracts trait values by walking a priority-ordered model
// candidate list until one produces a usable answer.
type Orchestrator struct {
	generator    llm.Generator
	candidates   []string
	maxNewTokens int
}

func NewOrchestrator(generator llm.Generator, candidates []string, maxNewTokens int) *Orchestrator {
	return &Orchestrator{
		generator:    generator,
		candidates:   candidates,
		maxNewTokens: maxNewTokens,
	}
}

func isLlama3(model string) bool {
	lowered := strings.ToLower(model)
	for _, marker := range llama3Markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func buildPrompt(traitType traits.Type, contextText, model string) string {
	instruction := traits.Instruction(traitType)
	if isLlama3(model) {
		return "<|begin_of_text|>" +
			"<|start_header_id|>system<|end_header_id|>\n" +
			systemPrompt + "\n" +
			"<|eot_id|>" +
			"<|start_header_id|>user<|end_header_id|>\n" +
			fmt.Sprintf("Context:\n%s\n\n", contextText) +
			fmt.Sprintf("Question: %s\n", instruction) +
			"Answer with the value only.\n" +
			"<|eot_id|>" +
			"<|start_header_id|>assistant<|end_header_id|>\n"
	}
	return "[INST]\n" +
		fmt.Sprintf("<<SYS>>\n%s\n<</SYS>>\n", systemPrompt) +
		fmt.Sprintf("Context:\n%s\n\n", contextText) +
		fmt.Sprintf("Question: %s\n", instruction) +
		"Answer with the value only.\n" +
		"[/INST]"
}

func cleanResponse(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, pattern := range noisePatterns {
		cleaned = strings.TrimSpace(pattern.ReplaceAllString(cleaned, ""))
	}
	// Collapse whitespace runs first, so a multi-line answer folds into one
	// line instead of losing its tail.
	cleaned = strings.TrimSpace(whitespaceRE.ReplaceAllString(cleaned, " "))
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	return cleaned
}

func isNullValue(value string) bool {
	switch strings.ToLower(value) {
	case "", "n/a", "not available":
		return true
	}
	return false
}

// Extract runs the candidate models in priority order. A candidate that
// fails or answers N/A advances to the next; exhausting all candidates is a
// null value, not an error.
func (o *Orchestrator) Extract(ctx context.Context, traitType traits.Type, contextText string) (Result, error) {
	for i, model := range o.candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		prompt := buildPrompt(traitType, contextText, model)
		raw, err := o.generator.Generate(ctx, prompt, model, o.maxNewTokens)
		if err != nil {
			log.Warn().Err(err).Str("trait", traitType.String()).Str("model", model).Msg("Generation failed, trying next candidate")
			continue
		}

		value := cleanResponse(raw)
		if isNullValue(value) {
			continue
		}
		if i > 0 {
			log.Info().Str("trait", traitType.String()).Str("model", model).Msg("Trait answered by fallback model")
		}
		return Result{Value: &value}, nil
	}
	return Result{}, nil
}
