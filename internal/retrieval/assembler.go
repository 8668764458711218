package retrieval

import (
	"context"
	"fmt"
	"strings"

	"rfp-traits/internal/db"
	"rfp-traits/internal/embedding"
	"rfp-traits/internal/token"
	"rfp-traits/internal/traits"
)

const (
	maxContextChunks   = 5
	evidenceTokenLimit = 400
	summaryTokenLimit  = 800
)

// Summarizer is the summarization collaborator; an empty result means the
// caller should fall back to the raw snippet.
type Summarizer interface {
	Summarize(ctx context.Context, text, traitFocus string) string
}

// Assembler ranks chunks and assembles the extraction context for a trait.
type Assembler struct {
	tokens     *token.Service
	embedder   embedding.Embedder
	summarizer Summarizer
}

func NewAssembler(tokens *token.Service, embedder embedding.Embedder, summarizer Summarizer) *Assembler {
	return &Assembler{tokens: tokens, embedder: embedder, summarizer: summarizer}
}

// trimByParagraphs trims text to the token budget by dropping whole trailing
// paragraphs; a first paragraph that alone exceeds the budget is hard-trimmed.
func (a *Assembler) trimByParagraphs(text string, maxTokens int) string {
	if text == "" || maxTokens <= 0 {
		return ""
	}
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return a.tokens.Trim(text, maxTokens)
	}

	var kept []string
	total := 0
	for _, paragraph := range paragraphs {
		paragraphTokens := a.tokens.Count(paragraph)
		if paragraphTokens > maxTokens {
			if len(kept) == 0 {
				kept = append(kept, a.tokens.Trim(paragraph, maxTokens))
			}
			break
		}
		if total+paragraphTokens > maxTokens {
			break
		}
		kept = append(kept, paragraph)
		total += paragraphTokens
	}
	if len(kept) == 0 {
		kept = append(kept, a.tokens.Trim(paragraphs[0], maxTokens))
	}
	return strings.Join(kept, "\n\n")
}

// BuildContext assembles the budgeted extraction context for a trait from the
// document's chunks, returning the context text and the chunks it was built
// from. An empty context means the trait should be skipped.
func (a *Assembler) BuildContext(ctx context.Context, chunks []db.Chunk, traitType traits.Type, tokenBudget int) (string, []db.Chunk, error) {
	ranked, err := a.rank(ctx, filterEarlyPages(chunks, traitType), traitType)
	if err != nil {
		return "", nil, err
	}
	if len(ranked) == 0 {
		return "", nil, nil
	}
	if len(ranked) > maxContextChunks {
		ranked = ranked[:maxContextChunks]
	}

	var summaries []string
	var evidenceBlocks []string
	var kept []db.Chunk

	for _, scored := range ranked {
		chunk := scored.Chunk
		content := strings.TrimSpace(chunk.Content)
		if content == "" {
			continue
		}
		kept = append(kept, chunk)

		snippet := a.trimByParagraphs(content, evidenceTokenLimit)
		evidenceBlocks = append(evidenceBlocks, fmt.Sprintf("Pages %d-%d:\n%s", chunk.PageStart, chunk.PageEnd, snippet))

		summaryInput := fmt.Sprintf("Trait focus: %s\nPages %d-%d:\n%s",
			traitType, chunk.PageStart, chunk.PageEnd, a.trimByParagraphs(content, summaryTokenLimit))
		summary := a.summarizer.Summarize(ctx, summaryInput, traitType.String())
		if summary == "" {
			summary = snippet
		}
		summaries = append(summaries, fmt.Sprintf("- Pages %d-%d: %s", chunk.PageStart, chunk.PageEnd, strings.TrimSpace(summary)))

		if len(kept) >= maxContextChunks {
			break
		}
	}

	if len(kept) == 0 {
		return "", nil, nil
	}

	summarySection := "Focused Summaries:\n" + strings.Join(summaries, "\n")
	evidenceSection, _ := a.tokens.JoinWithBudget(evidenceBlocks, tokenBudget, "\n\n---\n\n")
	contextText := fmt.Sprintf("%s\n\nSupporting Evidence:\n%s", summarySection, evidenceSection)

	return contextText, kept, nil
}
