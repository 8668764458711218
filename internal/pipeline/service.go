package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rfp-traits/internal/db"
)

// Service is the ingestion and query surface in front of the processor. It
// owns document admission; the processor owns everything after dispatch.
type Service struct {
	store     db.Store
	processor *Processor
	rawDir    string

	// Dispatch hands a claimed document to the processor. The default runs
	// the pipeline on a goroutine; tests and the CLI substitute a
	// synchronous dispatcher.
	Dispatch func(documentID, jobID uuid.UUID)
}

func NewService(store db.Store, processor *Processor, rawDir string) *Service {
	s := &Service{store: store, processor: processor, rawDir: rawDir}
	s.Dispatch = func(documentID, jobID uuid.UUID) {
		go func() {
			if err := processor.Run(context.Background(), documentID, jobID); err != nil {
				log.Error().Err(err).Str("document_id", documentID.String()).Msg("Background processing failed")
			}
		}()
	}
	return s
}

// RegisterDocument copies the file into managed storage under a fresh UUID
// name and creates the document record in uploaded state. Nothing is parsed
// yet; processing is a separate, explicit request.
func (s *Service) RegisterDocument(ctx context.Context, filePath string) (*db.Document, error) {
	src, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	id := uuid.New()
	storedName := id.String() + filepath.Ext(filePath)
	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	storedPath := filepath.Join(s.rawDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	now := time.Now().UTC()
	doc := &db.Document{
		ID:               id,
		OriginalFilename: filepath.Base(filePath),
		StoredFilename:   storedName,
		SourcePath:       storedPath,
		Status:           db.DocumentUploaded,
		Metadata:         map[string]any{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	log.Info().Str("document_id", doc.ID.String()).Str("file", doc.OriginalFilename).Msg("Document registered")
	return doc, nil
}

// ProcessDocument claims the document and dispatches a pipeline run. A
// document already in flight yields db.ErrConflict and no new job.
func (s *Service) ProcessDocument(ctx context.Context, documentID uuid.UUID) (*db.ProcessingJob, error) {
	doc, err := s.store.ClaimDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	job := &db.ProcessingJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		TaskID:     uuid.NewString(),
		Status:     db.JobPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.Dispatch(doc.ID, job.ID)
	return job, nil
}

// GetDocumentDetail returns the document together with its extracted traits.
func (s *Service) GetDocumentDetail(ctx context.Context, documentID uuid.UUID) (*db.Document, []db.Trait, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	extracted, err := s.store.ListTraits(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list traits: %w", err)
	}
	return doc, extracted, nil
}

func (s *Service) JobStatus(ctx context.Context, jobID uuid.UUID) (*db.ProcessingJob, error) {
	return s.store.GetJob(ctx, jobID)
}

func (s *Service) ListDocuments(ctx context.Context, offset, limit int) ([]db.Document, int, error) {
	return s.store.ListDocuments(ctx, offset, limit)
}
