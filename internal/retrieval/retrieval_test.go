package retrieval

import (
	"context"
	"strings"
	"testing"

	"rfp-traits/internal/db"
	"rfp-traits/internal/token"
	"rfp-traits/internal/traits"
)

type wordCodec struct {
	words []string
	ids   map[string]int
}

func newWordCodec() *wordCodec {
	return &wordCodec{ids: map[string]int{}}
}

func (c *wordCodec) Encode(text string) []int {
	var tokens []int
	for _, word := range strings.Fields(text) {
		id, ok := c.ids[word]
		if !ok {
			id = len(c.words)
			c.words = append(c.words, word)
			c.ids[word] = id
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (c *wordCodec) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = c.words[id]
	}
	return strings.Join(words, " ")
}

type fixedEmbedder struct {
	vector []float32
}

func (e *fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

type fakeSummarizer struct {
	summary string
	calls   int
}

func (s *fakeSummarizer) Summarize(ctx context.Context, text, traitFocus string) string {
	s.calls++
	return s.summary
}

func newTestAssembler(summary string) (*Assembler, *fakeSummarizer) {
	summarizer := &fakeSummarizer{summary: summary}
	assembler := NewAssembler(
		token.NewService(newWordCodec()),
		&fixedEmbedder{vector: []float32{1, 0}},
		summarizer,
	)
	return assembler, summarizer
}

func chunkOn(page int, content string) db.Chunk {
	return db.Chunk{PageStart: page, PageEnd: page, Content: content, Embedding: []float32{1, 0}}
}

func TestEarlyPageFilterFallsBackWhenEmpty(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		chunkOn(10, "body text"),
		chunkOn(20, "more body text"),
	}

	got, err := assembler.RetrieveChunks(context.Background(), chunks, traits.Title, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d chunks, want full set via fallback", len(got))
	}
}

func TestEarlyPageFilterApplies(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		chunkOn(1, "cover page"),
		chunkOn(12, "appendix"),
	}

	got, err := assembler.RetrieveChunks(context.Background(), chunks, traits.DueDate, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PageStart != 1 {
		t.Errorf("got %v, want only the early-page chunk", got)
	}
}

func TestKeywordScoreBreaksTies(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		chunkOn(5, "nothing relevant here"),
		chunkOn(6, "the submission deadline is due friday"),
	}

	got, err := assembler.RetrieveChunks(context.Background(), chunks, traits.DueDate, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PageStart != 6 {
		t.Errorf("keyword-matching chunk should rank first, got %v", got)
	}
}

func TestStableOrderOnEqualScores(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		chunkOn(7, "alpha text"),
		chunkOn(8, "beta text"),
		chunkOn(9, "gamma text"),
	}

	got, err := assembler.RetrieveChunks(context.Background(), chunks, traits.ScopeOfWork, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, chunk := range got {
		if chunk.PageStart != 7+i {
			t.Fatalf("fetch order not preserved for equal scores: %v", got)
		}
	}
}

func TestMissingEmbeddingScoresZeroVector(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		{PageStart: 5, PageEnd: 5, Content: "plain text"},
		chunkOn(6, "embedded text"),
	}

	got, err := assembler.RetrieveChunks(context.Background(), chunks, traits.ScopeOfWork, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].PageStart != 6 {
		t.Errorf("embedded chunk should outrank the one without an embedding, got %v", got)
	}
}

func TestBuildContextAssemblesSummariesAndEvidence(t *testing.T) {
	assembler, summarizer := newTestAssembler("short summary")
	chunks := []db.Chunk{
		chunkOn(1, "the submission deadline is march first"),
		chunkOn(2, "contact information follows"),
	}

	contextText, kept, err := assembler.BuildContext(context.Background(), chunks, traits.DueDate, 1200)
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d chunks, want 2", len(kept))
	}
	if !strings.Contains(contextText, "Focused Summaries:") || !strings.Contains(contextText, "Supporting Evidence:") {
		t.Errorf("context missing sections: %q", contextText)
	}
	if !strings.Contains(contextText, "- Pages 1-1: short summary") {
		t.Errorf("context missing summary bullet: %q", contextText)
	}
	if summarizer.calls != 2 {
		t.Errorf("summarizer called %d times, want 2", summarizer.calls)
	}
}

func TestBuildContextFallsBackToSnippetOnEmptySummary(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{chunkOn(3, "scope of work includes paving")}

	contextText, kept, err := assembler.BuildContext(context.Background(), chunks, traits.ScopeOfWork, 1200)
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d chunks, want 1", len(kept))
	}
	if !strings.Contains(contextText, "- Pages 3-3: scope of work includes paving") {
		t.Errorf("summary bullet should fall back to snippet: %q", contextText)
	}
}

func TestBuildContextSkipsBlankChunks(t *testing.T) {
	assembler, _ := newTestAssembler("")
	chunks := []db.Chunk{
		{PageStart: 1, PageEnd: 1, Content: "   ", Embedding: []float32{1, 0}},
	}

	contextText, kept, err := assembler.BuildContext(context.Background(), chunks, traits.Title, 1200)
	if err != nil {
		t.Fatal(err)
	}
	if contextText != "" || len(kept) != 0 {
		t.Errorf("blank chunks should yield an empty context, got %q / %v", contextText, kept)
	}
}
