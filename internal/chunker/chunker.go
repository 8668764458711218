package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"rfp-traits/internal/parser"
	"rfp-traits/internal/token"
)

var multispaceRE = regexp.MustCompile(`[ \t]{2,}`)

// Chunk is the chunking output before persistence.
type Chunk struct {
	Content    string
	PageStart  int
	PageEnd    int
	TokenCount int
	Metadata   map[string]any
}

// Chunker converts parsed pages or layout elements into bounded, overlapping
// chunks.
type Chunker struct {
	tokens *token.Service

	// MaxTokens bounds the element-mode buffer; MinTokens is the floor for
	// flushing a trailing buffer; OverlapTokens re-seeds the next buffer with
	// the tail of the previous chunk. PageModeTokens is the word-estimate
	// budget for page mode.
	MaxTokens      int
	MinTokens      int
	OverlapTokens  int
	PageModeTokens int
}

const (
	DefaultMaxTokens      = 900
	DefaultMinTokens      = 120
	DefaultOverlapTokens  = 120
	DefaultPageModeTokens = 400
)

func New(tokens *token.Service) *Chunker {
	return &Chunker{
		tokens:         tokens,
		MaxTokens:      DefaultMaxTokens,
		MinTokens:      DefaultMinTokens,
		OverlapTokens:  DefaultOverlapTokens,
		PageModeTokens: DefaultPageModeTokens,
	}
}

func normalizeParagraph(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return multispaceRE.ReplaceAllString(text, " ")
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		if normalized := normalizeParagraph(block); normalized != "" {
			paragraphs = append(paragraphs, normalized)
		}
	}
	return paragraphs
}

// ChunkPages accumulates normalized paragraphs per page under a running
// word-count estimate and flushes whenever the next paragraph would overflow.
func (c *Chunker) ChunkPages(pages []parser.Page) []Chunk {
	maxTokens := c.PageModeTokens
	if maxTokens <= 0 {
		maxTokens = DefaultPageModeTokens
	}

	var chunks []Chunk
	var buffer []string
	tokens := 0
	pageStart := 0
	lastPage := 0

	for _, page := range pages {
		for _, paragraph := range splitParagraphs(page.Text) {
			paragraphTokens := len(strings.Fields(paragraph))
			if pageStart == 0 {
				pageStart = page.Number
			}
			lastPage = page.Number

			if tokens+paragraphTokens > maxTokens && len(buffer) > 0 {
				chunks = append(chunks, Chunk{
					Content:    strings.Join(buffer, "\n\n"),
					PageStart:  firstNonZero(pageStart, lastPage, 1),
					PageEnd:    firstNonZero(lastPage, pageStart, 1),
					TokenCount: tokens,
				})
				buffer = nil
				tokens = 0
				pageStart = page.Number
			}

			buffer = append(buffer, paragraph)
			tokens += paragraphTokens
		}
	}

	if len(buffer) > 0 {
		chunks = append(chunks, Chunk{
			Content:    strings.Join(buffer, "\n\n"),
			PageStart:  firstNonZero(pageStart, 1),
			PageEnd:    firstNonZero(lastPage, pageStart, 1),
			TokenCount: tokens,
		})
	}
	return chunks
}

// ChunkElements packs layout elements into token-budgeted chunks. Oversized
// elements are pre-split into windows; a buffer flushes as soon as it reaches
// the budget, so it exceeds MaxTokens by at most one segment. The trailing
// buffer is kept only if it reaches MinTokens or nothing has been produced
// yet, which guarantees at least one chunk for non-empty input.
func (c *Chunker) ChunkElements(elements []parser.Element) []Chunk {
	acc := newAccumulator(c.tokens, c.OverlapTokens)
	var chunks []Chunk

	flush := func() {
		if chunk := acc.flush(); chunk != nil {
			chunks = append(chunks, *chunk)
		}
	}

	for _, element := range elements {
		text := normalizeParagraph(element.Text)
		if text == "" {
			continue
		}

		segments := []string{text}
		if c.tokens.Count(text) > c.MaxTokens {
			segments = c.tokens.SplitByTokens(text, c.MaxTokens, c.OverlapTokens)
		}

		for idx, segmentText := range segments {
			id := element.ID
			if len(segments) > 1 {
				id = fmt.Sprintf("%s:%d", element.ID, idx)
			}
			seg := segment{
				id:     id,
				text:   segmentText,
				typ:    element.Type,
				pages:  element.Pages,
				tokens: c.tokens.Count(segmentText),
			}

			if acc.tokens+seg.tokens > c.MaxTokens && len(acc.segments) > 0 {
				flush()
			}
			acc.append(seg)
			if acc.tokens >= c.MaxTokens {
				flush()
			}
		}
	}

	if len(acc.segments) > 0 && (acc.tokens >= c.MinTokens || len(chunks) == 0) {
		flush()
	}
	return chunks
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
