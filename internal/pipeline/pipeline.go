package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rfp-traits/internal/chunker"
	"rfp-traits/internal/db"
	"rfp-traits/internal/embedding"
	"rfp-traits/internal/extraction"
	"rfp-traits/internal/parser"
	"rfp-traits/internal/traits"
)

// contextTokenBudget caps the assembled prompt context per trait.
const contextTokenBudget = 1200

// DocumentParser produces the page and element summary for a stored file.
type DocumentParser interface {
	Parse(filePath string) (*parser.Summary, error)
}

// ContextBuilder ranks chunks for a trait and assembles the prompt context.
type ContextBuilder interface {
	BuildContext(ctx context.Context, chunks []db.Chunk, traitType traits.Type, tokenBudget int) (string, []db.Chunk, error)
}

// Extractor runs the generator fallback chain for one trait.
type Extractor interface {
	Extract(ctx context.Context, traitType traits.Type, contextText string) (extraction.Result, error)
}

// ArtifactWriter persists a chunk snapshot outside the database. Snapshot
// failures are logged, never fatal.
type ArtifactWriter interface {
	WriteChunkSnapshot(ctx context.Context, documentID uuid.UUID, chunks []db.Chunk) error
}

// Processor drives one document through parse, chunk, embed and extract. Every
// collaborator is passed in explicitly; there is no lazy construction.
type Processor struct {
	store     db.Store
	parser    DocumentParser
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	assembler ContextBuilder
	extractor Extractor
	artifacts ArtifactWriter
}

func NewProcessor(store db.Store, docParser DocumentParser, chk *chunker.Chunker, embedder embedding.Embedder, assembler ContextBuilder, extractor Extractor, artifacts ArtifactWriter) *Processor {
	return &Processor{
		store:     store,
		parser:    docParser,
		chunker:   chk,
		embedder:  embedder,
		assembler: assembler,
		extractor: extractor,
		artifacts: artifacts,
	}
}

// Run executes the full pipeline for a claimed document. On any failure the
// document and job are marked failed with the error recorded, and the error is
// returned to the dispatcher.
func (p *Processor) Run(ctx context.Context, documentID, jobID uuid.UUID) error {
	doc, err := p.store.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", documentID, err)
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		log.Warn().Err(err).Str("job_id", jobID.String()).Msg("Job record not found, continuing without status tracking")
		job = nil
	}

	if err := p.run(ctx, doc, job); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("Pipeline run failed")
		p.markFailed(ctx, doc, err)
		p.failJob(ctx, job, err)
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, doc *db.Document, job *db.ProcessingJob) error {
	start := time.Now()
	log.Info().Str("document_id", doc.ID.String()).Str("file", doc.OriginalFilename).Msg("Processing document")

	if err := p.markProcessing(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document processing: %w", err)
	}
	if err := p.startJob(ctx, job); err != nil {
		return fmt.Errorf("failed to start job: %w", err)
	}

	// parse
	summary, err := p.parser.Parse(doc.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	doc.PageCount = summary.PageCount
	doc.TokenCount = summary.TokenCount
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	pageStats := make([]map[string]any, 0, len(summary.Pages))
	for _, page := range summary.Pages {
		pageStats = append(pageStats, map[string]any{"number": page.Number, "tokens": page.Tokens})
	}
	doc.Metadata["pages"] = pageStats
	doc.Metadata["elements_ingested"] = len(summary.Elements)
	if err := p.store.UpdateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to record parse results: %w", err)
	}

	// re-runs replace derived state wholesale
	if err := p.store.DeleteDerived(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to clear derived records: %w", err)
	}

	// chunk
	if err := p.setJobStep(ctx, job, db.StepChunking); err != nil {
		return fmt.Errorf("failed to update job step: %w", err)
	}
	var pieces []chunker.Chunk
	if len(summary.Elements) > 0 {
		pieces = p.chunker.ChunkElements(summary.Elements)
	} else {
		pieces = p.chunker.ChunkPages(summary.Pages)
	}
	chunks := make([]*db.Chunk, 0, len(pieces))
	now := time.Now().UTC()
	for i, piece := range pieces {
		chunks = append(chunks, &db.Chunk{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Seq:        i,
			PageStart:  piece.PageStart,
			PageEnd:    piece.PageEnd,
			TokenCount: piece.TokenCount,
			Content:    piece.Content,
			Metadata:   piece.Metadata,
			CreatedAt:  now,
		})
	}
	if err := p.store.InsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	log.Info().Str("document_id", doc.ID.String()).Int("chunks", len(chunks)).Msg("Chunking complete")

	if p.artifacts != nil {
		snapshot := make([]db.Chunk, 0, len(chunks))
		for _, chunk := range chunks {
			snapshot = append(snapshot, *chunk)
		}
		if err := p.artifacts.WriteChunkSnapshot(ctx, doc.ID, snapshot); err != nil {
			log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("Failed to write chunk snapshot")
		}
	}

	// embed
	if err := p.setJobStep(ctx, job, db.StepEmbedding); err != nil {
		return fmt.Errorf("failed to update job step: %w", err)
	}
	embedded := 0
	for _, chunk := range chunks {
		vector, err := p.embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			log.Warn().Err(err).Str("chunk_id", chunk.ID.String()).Msg("Failed to embed chunk")
			continue
		}
		if err := p.store.UpdateChunkEmbedding(ctx, chunk.ID, vector); err != nil {
			return fmt.Errorf("failed to store embedding: %w", err)
		}
		embedded++
	}
	log.Info().Str("document_id", doc.ID.String()).Int("embedded", embedded).Int("total", len(chunks)).Msg("Embedding complete")

	// extract
	if err := p.setJobStep(ctx, job, db.StepTraitExtraction); err != nil {
		return fmt.Errorf("failed to update job step: %w", err)
	}
	traitCount, err := p.extractTraits(ctx, doc)
	if err != nil {
		return err
	}

	doc.Metadata["chunk_count"] = len(chunks)
	doc.Metadata["trait_count"] = traitCount
	if err := p.markCompleted(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}
	if err := p.finishJob(ctx, job); err != nil {
		return fmt.Errorf("failed to finish job: %w", err)
	}

	log.Info().
		Str("document_id", doc.ID.String()).
		Int("traits", traitCount).
		Dur("elapsed", time.Since(start)).
		Msg("Processing complete")
	return nil
}

func (p *Processor) extractTraits(ctx context.Context, doc *db.Document) (int, error) {
	chunks, err := p.store.ListChunks(ctx, doc.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list chunks: %w", err)
	}

	created := 0
	for _, traitType := range traits.All {
		contextText, supporting, err := p.assembler.BuildContext(ctx, chunks, traitType, contextTokenBudget)
		if err != nil {
			return created, fmt.Errorf("failed to build context for %s: %w", traitType, err)
		}
		if contextText == "" || len(supporting) == 0 {
			log.Debug().Str("trait", string(traitType)).Msg("No usable context, skipping trait")
			continue
		}

		result, err := p.extractor.Extract(ctx, traitType, contextText)
		if err != nil {
			return created, fmt.Errorf("failed to extract %s: %w", traitType, err)
		}

		trait := &db.Trait{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			TraitType:  traitType,
			Value:      result.Value,
			Confidence: result.Confidence,
			Pages:      result.Pages,
			Evidence:   result.Evidence,
			Details:    result.Details,
			CreatedAt:  time.Now().UTC(),
		}
		if len(trait.Pages) == 0 {
			trait.Pages = supportingPages(supporting)
		}
		if len(trait.Evidence) == 0 {
			trait.Evidence = evidencePreviews(supporting)
		}
		if trait.Details == nil {
			trait.Details = map[string]any{}
		}
		trait.Details["source_chunk_ids"] = chunkIDs(supporting)
		trait.Details["context_preview"] = preview(contextText, 1000)

		if err := p.store.InsertTrait(ctx, trait); err != nil {
			return created, fmt.Errorf("failed to insert trait %s: %w", traitType, err)
		}
		created++
	}
	return created, nil
}

// supportingPages collects the distinct starting pages of the supporting
// chunks, sorted ascending.
func supportingPages(chunks []db.Chunk) []int {
	seen := make(map[int]struct{})
	var pages []int
	for _, chunk := range chunks {
		if _, ok := seen[chunk.PageStart]; ok {
			continue
		}
		seen[chunk.PageStart] = struct{}{}
		pages = append(pages, chunk.PageStart)
	}
	sort.Ints(pages)
	return pages
}

func evidencePreviews(chunks []db.Chunk) []string {
	previews := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		previews = append(previews, fmt.Sprintf("Pages %d-%d: %s", chunk.PageStart, chunk.PageEnd, preview(chunk.Content, 280)))
	}
	return previews
}

func chunkIDs(chunks []db.Chunk) []string {
	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		ids = append(ids, chunk.ID.String())
	}
	return ids
}

// preview truncates to limit characters, never splitting a rune.
func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
