package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rfp-traits/internal/traits"
)

type scriptedGenerator struct {
	responses map[string]string
	errs      map[string]error
	prompts   []string
	models    []string
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) Generate(ctx context.Context, prompt, model string, maxNewTokens int) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.models = append(g.models, model)
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.responses[model], nil
}

func TestExtractReturnsFirstUsableAnswer(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string]string{"model-a": "Road Repair Services"}}
	o := NewOrchestrator(gen, []string{"model-a", "model-b"}, 512)

	result, err := o.Extract(context.Background(), traits.Title, "some context")
	if err != nil {
		t.Fatal(err)
	}
	if result.Value == nil || *result.Value != "Road Repair Services" {
		t.Errorf("value = %v, want Road Repair Services", result.Value)
	}
	if len(gen.models) != 1 {
		t.Errorf("second candidate should not run, called %v", gen.models)
	}
	if result.Confidence != nil || result.Pages != nil || result.Evidence != nil {
		t.Errorf("confidence/pages/evidence must stay nil, got %+v", result)
	}
}

func TestExtractAdvancesPastNullAnswers(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string]string{
		"model-a": "N/A",
		"model-b": "2025-03-01",
	}}
	o := NewOrchestrator(gen, []string{"model-a", "model-b"}, 512)

	result, err := o.Extract(context.Background(), traits.DueDate, "ctx")
	if err != nil {
		t.Fatal(err)
	}
	if result.Value == nil || *result.Value != "2025-03-01" {
		t.Errorf("value = %v, want fallback model's answer", result.Value)
	}
}

func TestExtractAllCandidatesNullYieldsNullValue(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string]string{
		"model-a": "N/A",
		"model-b": "not available",
	}}
	o := NewOrchestrator(gen, []string{"model-a", "model-b"}, 512)

	result, err := o.Extract(context.Background(), traits.NotaryNeeded, "ctx")
	if err != nil {
		t.Fatal(err)
	}
	if result.Value != nil {
		t.Errorf("value = %q, want nil", *result.Value)
	}
}

func TestExtractRecoversFromGeneratorError(t *testing.T) {
	gen := &scriptedGenerator{
		errs:      map[string]error{"model-a": errors.New("model load failed")},
		responses: map[string]string{"model-b": "Yes"},
	}
	o := NewOrchestrator(gen, []string{"model-a", "model-b"}, 512)

	result, err := o.Extract(context.Background(), traits.ResumesNeeded, "ctx")
	if err != nil {
		t.Fatal(err)
	}
	if result.Value == nil || *result.Value != "Yes" {
		t.Errorf("value = %v, want Yes from fallback", result.Value)
	}
}

func TestPromptTemplateFamilies(t *testing.T) {
	gen := &scriptedGenerator{responses: map[string]string{}}
	o := NewOrchestrator(gen, []string{"meta-llama/Meta-Llama-3.1-8B-Instruct", "mistral-7b"}, 512)

	if _, err := o.Extract(context.Background(), traits.Title, "ctx"); err != nil {
		t.Fatal(err)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("got %d prompts, want 2", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "<|begin_of_text|>") {
		t.Errorf("llama3 model should use the chat-turn template: %q", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[1], "[INST]") || !strings.Contains(gen.prompts[1], "<<SYS>>") {
		t.Errorf("other models should use the instruction-block template: %q", gen.prompts[1])
	}
}

func TestCleanResponseStripsTemplateMarkers(t *testing.T) {
	cases := map[string]string{
		"[INST] The Title [/INST]":                       "The Title",
		"<|begin_of_text|>The Title<|eot_id|>":           "The Title",
		"<|start_header_id|>assistant<|end_header_id|>X": "X",
		"Context: The   Title":                           "The Title",
		"<<SYS>>value<</SYS>>":                           "value",
	}
	for input, want := range cases {
		if got := cleanResponse(input); got != want {
			t.Errorf("cleanResponse(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCleanResponseFoldsMultiLineAnswers(t *testing.T) {
	cases := map[string]string{
		"2025-03-01\nThe deadline is firm.": "2025-03-01 The deadline is firm.",
		"first line\nsecond line":           "first line second line",
		"value\n\n\nextra   detail":         "value extra detail",
	}
	for input, want := range cases {
		if got := cleanResponse(input); got != want {
			t.Errorf("cleanResponse(%q) = %q, want %q", input, got, want)
		}
	}
}
