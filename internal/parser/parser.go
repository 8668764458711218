package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"rfp-traits/internal/token"
)

// Page is one page of extracted text.
type Page struct {
	Number int
	Text   string
	Tokens int
}

// Element is a layout-aware unit (paragraph, table, heading) with the pages
// it spans. Formats without layout information produce zero elements and the
// pipeline falls back to page-mode chunking.
type Element struct {
	ID             string
	Text           string
	Type           string
	Pages          []int
	Tokens         int
	StructuredText string
}

// Summary is the full parse result for one document.
type Summary struct {
	PageCount  int
	TokenCount int
	Pages      []Page
	Elements   []Element
}

type Parser struct {
	tokens *token.Service
}

func New(tokens *token.Service) *Parser {
	return &Parser{tokens: tokens}
}

// Parse dispatches on file extension.
func (p *Parser) Parse(filePath string) (*Summary, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return p.parsePDF(filePath)
	case ".docx":
		return p.parseDOCX(filePath)
	case ".xlsx":
		return p.parseXLSX(filePath)
	case ".ods":
		return p.parseODS(filePath)
	case ".md":
		return p.parseMarkdown(filePath)
	case ".txt":
		return p.parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func (p *Parser) summarize(pages []Page, elements []Element) *Summary {
	total := 0
	for _, page := range pages {
		total += page.Tokens
	}
	return &Summary{
		PageCount:  len(pages),
		TokenCount: total,
		Pages:      pages,
		Elements:   elements,
	}
}

func (p *Parser) parsePDF(filePath string) (*Summary, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		pages = append(pages, Page{
			Number: i,
			Text:   pageText,
			Tokens: p.tokens.Count(pageText),
		})
	}
	// The plain-text pdf reader carries no layout information; chunking runs
	// in page mode for these documents.
	return p.summarize(pages, nil), nil
}

func (p *Parser) parseDOCX(filePath string) (*Summary, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer r.Close()

	content := stripTags(r.Editable().GetContent())

	var elements []Element
	var kept []string
	for _, paragraph := range strings.Split(content, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		kept = append(kept, paragraph)
		elements = append(elements, Element{
			ID:     uuid.NewString(),
			Text:   paragraph,
			Type:   "NarrativeText",
			Pages:  []int{1},
			Tokens: p.tokens.Count(paragraph),
		})
	}

	// DOCX has no page numbers; expose the whole body as one page.
	text := strings.Join(kept, "\n\n")
	pages := []Page{{Number: 1, Text: text, Tokens: p.tokens.Count(text)}}
	return p.summarize(pages, elements), nil
}

func (p *Parser) parseXLSX(filePath string) (*Summary, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}

	var pages []Page
	var elements []Element
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		p.appendSheet(&pages, &elements, sheetNum+1, text.String())
	}
	return p.summarize(pages, elements), nil
}

func (p *Parser) parseODS(filePath string) (*Summary, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ods: %w", err)
	}
	defer f.Close()

	var pages []Page
	var elements []Element
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		p.appendSheet(&pages, &elements, sheetNum+1, text.String())
	}
	return p.summarize(pages, elements), nil
}

// appendSheet records one spreadsheet sheet as both a page and a Table
// element, keeping the sheet markdown as structured text.
func (p *Parser) appendSheet(pages *[]Page, elements *[]Element, sheetNum int, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	tokens := p.tokens.Count(text)
	*pages = append(*pages, Page{Number: sheetNum, Text: text, Tokens: tokens})
	*elements = append(*elements, Element{
		ID:             uuid.NewString(),
		Text:           text,
		Type:           "Table",
		Pages:          []int{sheetNum},
		Tokens:         tokens,
		StructuredText: text,
	})
}

func (p *Parser) parseText(filePath string) (*Summary, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return p.summarize(nil, nil), nil
	}
	pages := []Page{{Number: 1, Text: text, Tokens: p.tokens.Count(text)}}
	return p.summarize(pages, nil), nil
}

// stripTags drops any leftover xml tags the docx content extraction leaves in.
func stripTags(content string) string {
	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
