package artifact

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"rfp-traits/internal/db"
	"rfp-traits/internal/embedding"
)

// ChromemStore keeps the chunk snapshot in a persistent chromem-go database,
// one collection per document, so chunks can be inspected and queried offline.
// Chunks without a stored embedding are embedded on write through the shared
// embedder.
type ChromemStore struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
}

func NewChromemStore(dbPath string, embedder embedding.Embedder) (*ChromemStore, error) {
	database, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create chromem database: %w", err)
	}
	return &ChromemStore{
		db: database,
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return embedder.EmbedQuery(ctx, text)
		},
	}, nil
}

func (s *ChromemStore) WriteChunkSnapshot(ctx context.Context, documentID uuid.UUID, chunks []db.Chunk) error {
	name := "doc-" + documentID.String()

	// Re-runs replace the snapshot wholesale, mirroring the chunk tables.
	if existing := s.db.GetCollection(name, s.embedFunc); existing != nil {
		if err := s.db.DeleteCollection(name); err != nil {
			return fmt.Errorf("failed to reset collection: %w", err)
		}
	}
	collection, err := s.db.GetOrCreateCollection(name, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      chunk.ID.String(),
			Content: chunk.Content,
			Metadata: map[string]string{
				"page_start":  strconv.Itoa(chunk.PageStart),
				"page_end":    strconv.Itoa(chunk.PageEnd),
				"token_count": strconv.Itoa(chunk.TokenCount),
			},
			Embedding: chunk.Embedding,
		}
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add snapshot documents: %w", err)
	}
	return nil
}
