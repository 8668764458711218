package token

import (
	"fmt"
	"strings"
	"testing"
)

// wordCodec treats every whitespace-separated word as one token.
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

func newTestService() *Service {
	return NewService(newWordCodec())
}

func TestCount(t *testing.T) {
	svc := newTestService()
	if got := svc.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if got := svc.Count("one two three"); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestTrim(t *testing.T) {
	svc := newTestService()
	if got := svc.Trim("a b c d", 2); got != "a b" {
		t.Errorf("Trim = %q, want %q", got, "a b")
	}
	if got := svc.Trim("a b", 10); got != "a b" {
		t.Errorf("Trim within budget = %q, want identity", got)
	}
	if got := svc.Trim("a b", 0); got != "" {
		t.Errorf("Trim with zero budget = %q, want empty", got)
	}
}

func TestTailTokens(t *testing.T) {
	svc := newTestService()
	if got := svc.TailTokens("a b c d", 2); got != "c d" {
		t.Errorf("TailTokens = %q, want %q", got, "c d")
	}
	if got := svc.TailTokens("a b", 5); got != "a b" {
		t.Errorf("TailTokens beyond length = %q, want identity", got)
	}
}

func TestSplitByTokens(t *testing.T) {
	svc := newTestService()

	if got := svc.SplitByTokens("short text", 10, 0); len(got) != 1 || got[0] != "short text" {
		t.Errorf("SplitByTokens within budget = %v, want unchanged single slice", got)
	}

	var words []string
	for i := 0; i < 10; i++ {
		words = append(words, fmt.Sprintf("w%d", i))
	}
	text := strings.Join(words, " ")

	chunks := svc.SplitByTokens(text, 3, 0)
	for _, chunk := range chunks {
		if svc.Count(chunk) > 3 {
			t.Errorf("chunk %q exceeds max tokens", chunk)
		}
	}
	if joined := strings.Join(chunks, " "); joined != text {
		t.Errorf("concatenated chunks = %q, want original %q", joined, text)
	}
}

func TestSplitByTokensOverlap(t *testing.T) {
	svc := newTestService()
	chunks := svc.SplitByTokens("a b c d e f", 4, 2)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	if chunks[0] != "a b c d" || chunks[1] != "c d e f" {
		t.Errorf("overlap windows = %v, want [a b c d] [c d e f]", chunks)
	}
}

func TestSplitByTokensOverlapAtLeastWindowSize(t *testing.T) {
	svc := newTestService()
	for _, overlap := range []int{4, 7} {
		chunks := svc.SplitByTokens("a b c d e f g h", 4, overlap)
		if len(chunks) < 2 {
			t.Fatalf("overlap %d: expected multiple chunks, got %v", overlap, chunks)
		}
		if first := chunks[0]; first != "a b c d" {
			t.Errorf("overlap %d: first window = %q", overlap, first)
		}
		last := chunks[len(chunks)-1]
		if !strings.HasSuffix(last, "h") {
			t.Errorf("overlap %d: windows must reach the end, last = %q", overlap, last)
		}
	}
}

func TestJoinWithBudgetEmpty(t *testing.T) {
	svc := newTestService()
	joined, kept := svc.JoinWithBudget(nil, 10, "\n\n")
	if joined != "" || len(kept) != 0 {
		t.Errorf("JoinWithBudget(nil) = (%q, %v), want empty", joined, kept)
	}
}

func TestJoinWithBudgetForceIncludesFirstBlock(t *testing.T) {
	svc := newTestService()
	joined, kept := svc.JoinWithBudget([]string{"a b c d e"}, 3, "\n\n")
	if joined != "a b c" {
		t.Errorf("joined = %q, want trimmed first block", joined)
	}
	if len(kept) != 1 || kept[0] != "a b c d e" {
		t.Errorf("kept = %v, want original untrimmed block", kept)
	}
}

func TestJoinWithBudgetStopsBeforeOverflow(t *testing.T) {
	svc := newTestService()
	blocks := []string{"a b", "c d", "e f g h i j"}
	joined, kept := svc.JoinWithBudget(blocks, 5, "|")
	if len(kept) != 2 {
		t.Fatalf("kept = %v, want first two blocks", kept)
	}
	if joined != "a b|c d" {
		t.Errorf("joined = %q", joined)
	}
}

func TestCosine(t *testing.T) {
	v := []float32{1, 2, 3}
	if got := Cosine(v, v); got < 0.999 || got > 1.001 {
		t.Errorf("Cosine(v, v) = %f, want 1.0", got)
	}
	if got := Cosine(nil, []float32{1, 2}); got != 0 {
		t.Errorf("Cosine with empty vector = %f, want 0", got)
	}
	if got := Cosine([]float32{1, 2, 3}, []float32{1, 2}); got != 0 {
		t.Errorf("Cosine with mismatched lengths = %f, want 0", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("Cosine with zero magnitude = %f, want 0", got)
	}
}
