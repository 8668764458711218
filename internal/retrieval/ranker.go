package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"rfp-traits/internal/db"
	"rfp-traits/internal/token"
	"rfp-traits/internal/traits"
)

const (
	// Title and due date near-universally live on the first pages of an RFP.
	earlyPageMax = 4

	vectorWeight  = 0.7
	keywordWeight = 0.3
)

var earlyPageTraits = map[traits.Type]bool{
	traits.Title:   true,
	traits.DueDate: true,
}

// keywordPatterns holds the compiled whole-word matchers per trait, built
// once from the keyword registry.
var keywordPatterns = func() map[traits.Type][]*regexp.Regexp {
	patterns := make(map[traits.Type][]*regexp.Regexp, len(traits.Keywords))
	for traitType, keywords := range traits.Keywords {
		compiled := make([]*regexp.Regexp, 0, len(keywords))
		for _, keyword := range keywords {
			compiled = append(compiled, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(keyword))+`\b`))
		}
		patterns[traitType] = compiled
	}
	return patterns
}()

// ScoredChunk pairs a chunk with its combined retrieval score.
type ScoredChunk struct {
	Chunk db.Chunk
	Score float64
}

// filterEarlyPages restricts candidates to early pages for the traits that
// live there, falling back to the full set if the filter empties it.
func filterEarlyPages(chunks []db.Chunk, traitType traits.Type) []db.Chunk {
	if !earlyPageTraits[traitType] {
		return chunks
	}
	var early []db.Chunk
	for _, chunk := range chunks {
		pageStart := chunk.PageStart
		if pageStart == 0 {
			pageStart = 1
		}
		if pageStart <= earlyPageMax {
			early = append(early, chunk)
		}
	}
	if len(early) == 0 {
		return chunks
	}
	return early
}

func keywordScore(content string, patterns []*regexp.Regexp) float64 {
	if len(patterns) == 0 {
		return 0
	}
	lowered := strings.ToLower(content)
	hits := 0
	for _, pattern := range patterns {
		if pattern.MatchString(lowered) {
			hits++
		}
	}
	return float64(hits) / float64(len(patterns))
}

// rank scores the candidate chunks against the trait's retrieval query with
// the vector/keyword blend. Equal scores keep fetch order.
func (a *Assembler) rank(ctx context.Context, chunks []db.Chunk, traitType traits.Type) ([]ScoredChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	queryEmbedding, err := a.embedder.EmbedQuery(ctx, traits.RetrievalQuery(traitType))
	if err != nil {
		return nil, fmt.Errorf("failed to embed retrieval query for %s: %w", traitType, err)
	}

	patterns := keywordPatterns[traitType]
	ranked := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vectorScore := token.Cosine(chunk.Embedding, queryEmbedding)
		combined := vectorWeight*vectorScore + keywordWeight*keywordScore(chunk.Content, patterns)
		ranked = append(ranked, ScoredChunk{Chunk: chunk, Score: combined})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// RetrieveChunks ranks the document's chunks for a trait and returns the top
// limit chunks.
func (a *Assembler) RetrieveChunks(ctx context.Context, chunks []db.Chunk, traitType traits.Type, limit int) ([]db.Chunk, error) {
	ranked, err := a.rank(ctx, filterEarlyPages(chunks, traitType), traitType)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	selected := make([]db.Chunk, 0, len(ranked))
	for _, scored := range ranked {
		selected = append(selected, scored.Chunk)
	}
	return selected, nil
}
