package db

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence collaborator for the pipeline. The bun/Postgres
// implementation lives in this package; tests use an in-memory fake.
type Store interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]Document, int, error)
	UpdateDocument(ctx context.Context, doc *Document) error

	// ClaimDocument atomically moves a document to in_flight. It returns
	// ErrConflict when the document is already in_flight or processing, so
	// concurrent processing requests cannot both be admitted.
	ClaimDocument(ctx context.Context, id uuid.UUID) (*Document, error)

	// DeleteDerived removes all chunks and traits for the document ahead of a
	// re-run. Re-processing replaces derived state, never merges.
	DeleteDerived(ctx context.Context, documentID uuid.UUID) error

	InsertChunks(ctx context.Context, chunks []*Chunk) error
	UpdateChunkEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32) error
	ListChunks(ctx context.Context, documentID uuid.UUID) ([]Chunk, error)

	InsertTrait(ctx context.Context, trait *Trait) error
	ListTraits(ctx context.Context, documentID uuid.UUID) ([]Trait, error)

	CreateJob(ctx context.Context, job *ProcessingJob) error
	UpdateJob(ctx context.Context, job *ProcessingJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*ProcessingJob, error)
}
