package chunker

import (
	"sort"
	"strings"

	"rfp-traits/internal/token"
)

type segment struct {
	id     string
	text   string
	typ    string
	pages  []int
	tokens int
}

// accumulator is the explicit chunk buffer: segments go in via append, a
// chunk comes out via flush. With a positive overlap, flush re-seeds the
// buffer with the tail of the emitted content so adjacent chunks share
// trailing context.
type accumulator struct {
	tokenSvc *token.Service
	overlap  int

	segments []segment
	tokens   int
}

func newAccumulator(tokenSvc *token.Service, overlap int) *accumulator {
	return &accumulator{tokenSvc: tokenSvc, overlap: overlap}
}

func (a *accumulator) append(seg segment) {
	a.segments = append(a.segments, seg)
	a.tokens += seg.tokens
}

func (a *accumulator) flush() *Chunk {
	if len(a.segments) == 0 {
		return nil
	}

	var pages []int
	var parts []string
	var ids []string
	typeSet := map[string]bool{}
	var types []string
	for _, seg := range a.segments {
		pages = append(pages, seg.pages...)
		parts = append(parts, seg.text)
		ids = append(ids, seg.id)
		if !typeSet[seg.typ] {
			typeSet[seg.typ] = true
			types = append(types, seg.typ)
		}
	}

	pageStart, pageEnd := pageRange(pages)
	content := strings.Join(parts, "\n\n")
	chunk := &Chunk{
		Content:    content,
		PageStart:  pageStart,
		PageEnd:    pageEnd,
		TokenCount: a.tokens,
		Metadata: map[string]any{
			"element_ids":   ids,
			"element_types": types,
			"source_pages":  pages,
		},
	}

	a.segments = nil
	a.tokens = 0

	if a.overlap > 0 && content != "" {
		tail := a.tokenSvc.TailTokens(content, a.overlap)
		if tail != "" {
			var tailPages []int
			if len(pages) > 0 {
				tailPages = pages[len(pages)-1:]
			}
			a.append(segment{
				id:     ids[len(ids)-1] + ":overlap",
				text:   tail,
				typ:    "overlap",
				pages:  tailPages,
				tokens: a.tokenSvc.Count(tail),
			})
		}
	}

	return chunk
}

func pageRange(pages []int) (int, int) {
	if len(pages) == 0 {
		return 1, 1
	}
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)
	return sorted[0], sorted[len(sorted)-1]
}
