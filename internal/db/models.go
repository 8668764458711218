package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"rfp-traits/internal/traits"
)

type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentInFlight   DocumentStatus = "in_flight"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobSuccess JobStatus = "success"
	JobFailed  JobStatus = "failed"
)

// Job step breadcrumbs, overwritten at each stage transition.
const (
	StepParsing         = "parsing"
	StepChunking        = "chunking"
	StepEmbedding       = "embedding"
	StepTraitExtraction = "trait_extraction"
	StepCompleted       = "completed"
)

// Document is the root aggregate. It owns chunks and traits, which are
// cascade-replaced on every processing run, and an append-only job history.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID               uuid.UUID      `bun:"id,pk,type:uuid"`
	OriginalFilename string         `bun:"original_filename,notnull"`
	StoredFilename   string         `bun:"stored_filename,notnull"`
	SourcePath       string         `bun:"source_path,notnull"`
	Status           DocumentStatus `bun:"status,notnull"`
	PageCount        int            `bun:"page_count"`
	TokenCount       int            `bun:"token_count"`
	Metadata         map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt        time.Time      `bun:"created_at,notnull"`
	UpdatedAt        time.Time      `bun:"updated_at,notnull"`
}

type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	DocumentID uuid.UUID      `bun:"document_id,notnull,type:uuid"`
	SectionID  *uuid.UUID     `bun:"section_id,type:uuid"`
	// Seq is the chunk's position in document order; batch inserts share a
	// created_at timestamp, so ordering needs an explicit sequence.
	Seq       int `bun:"seq,notnull"`
	PageStart int `bun:"page_start,notnull"`
	PageEnd    int            `bun:"page_end,notnull"`
	TokenCount int            `bun:"token_count,notnull"`
	Content    string         `bun:"content,notnull"`
	Summary    *string        `bun:"summary"`
	Keywords   []string       `bun:"keywords,type:jsonb"`
	Embedding  []float32      `bun:"embedding,type:vector(768)"`
	Metadata   map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
}

type Trait struct {
	bun.BaseModel `bun:"table:traits,alias:t"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	DocumentID uuid.UUID      `bun:"document_id,notnull,type:uuid"`
	TraitType  traits.Type    `bun:"trait_type,notnull"`
	Value      *string        `bun:"value"`
	Confidence *float64       `bun:"confidence"`
	Pages      []int          `bun:"pages,type:jsonb"`
	Evidence   []string       `bun:"evidence,type:jsonb"`
	Details    map[string]any `bun:"details,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
}

type ProcessingJob struct {
	bun.BaseModel `bun:"table:processing_jobs,alias:j"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid"`
	DocumentID   uuid.UUID  `bun:"document_id,notnull,type:uuid"`
	TaskID       string     `bun:"task_id,notnull"`
	Status       JobStatus  `bun:"status,notnull"`
	Step         string     `bun:"step"`
	ErrorMessage *string    `bun:"error_message"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	StartedAt    *time.Time `bun:"started_at"`
	CompletedAt  *time.Time `bun:"completed_at"`
}
