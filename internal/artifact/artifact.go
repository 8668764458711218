package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"rfp-traits/internal/config"
	"rfp-traits/internal/db"
	"rfp-traits/internal/embedding"
)

// Store persists the per-document chunk snapshot for offline inspection.
// Snapshot writes are best-effort: the pipeline logs and continues on error.
type Store interface {
	WriteChunkSnapshot(ctx context.Context, documentID uuid.UUID, chunks []db.Chunk) error
}

// NewStore builds the configured snapshot backend.
func NewStore(cfg *config.Config, embedder embedding.Embedder) (Store, error) {
	switch cfg.Artifact.Backend {
	case "json":
		return NewFileStore(cfg.Storage.ProcessedDir), nil
	case "chromem":
		return NewChromemStore(cfg.Artifact.Path, embedder)
	default:
		return nil, fmt.Errorf("unknown artifact backend: %s", cfg.Artifact.Backend)
	}
}

// FileStore writes chunks.json under a per-document directory.
type FileStore struct {
	processedDir string
}

func NewFileStore(processedDir string) *FileStore {
	return &FileStore{processedDir: processedDir}
}

type snapshotChunk struct {
	ID         string         `json:"id"`
	PageStart  int            `json:"page_start"`
	PageEnd    int            `json:"page_end"`
	TokenCount int            `json:"token_count"`
	Metadata   map[string]any `json:"metadata"`
}

func (s *FileStore) WriteChunkSnapshot(ctx context.Context, documentID uuid.UUID, chunks []db.Chunk) error {
	dir := filepath.Join(s.processedDir, documentID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	snapshot := make([]snapshotChunk, len(chunks))
	for i, chunk := range chunks {
		snapshot[i] = snapshotChunk{
			ID:         chunk.ID.String(),
			PageStart:  chunk.PageStart,
			PageEnd:    chunk.PageEnd,
			TokenCount: chunk.TokenCount,
			Metadata:   chunk.Metadata,
		}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "chunks.json"), data, 0o644)
}
