package parser

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// parseMarkdown walks the goldmark AST and emits headings and paragraphs as
// layout-aware elements. Markdown has no pages, so the whole file is page 1.
func (p *Parser) parseMarkdown(filePath string) (*Summary, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(source))

	var elements []Element
	err = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var elementType string
		switch node.(type) {
		case *ast.Heading:
			elementType = "Title"
		case *ast.Paragraph, *ast.TextBlock:
			elementType = "NarrativeText"
		default:
			return ast.WalkContinue, nil
		}

		text := blockText(node, source)
		if text == "" {
			return ast.WalkSkipChildren, nil
		}
		elements = append(elements, Element{
			ID:     uuid.NewString(),
			Text:   text,
			Type:   elementType,
			Pages:  []int{1},
			Tokens: p.tokens.Count(text),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	text := string(source)
	pages := []Page{{Number: 1, Text: text, Tokens: p.tokens.Count(text)}}
	return p.summarize(pages, elements), nil
}

func blockText(node ast.Node, source []byte) string {
	lines := node.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	return strings.TrimSpace(b.String())
}
