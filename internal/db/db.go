package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"rfp-traits/internal/config"
)

// ConnectDB opens the Postgres connection using the pgdriver connector.
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

// NewDB wraps the sql connection in a bun client.
func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB creates the tables if they do not exist.
func InitDB(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Document)(nil),
		(*Chunk)(nil),
		(*Trait)(nil),
		(*ProcessingJob)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// BunStore is the Postgres-backed Store.
type BunStore struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) CreateDocument(ctx context.Context, doc *Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err := s.db.NewInsert().Model(doc).Exec(ctx)
	return err
}

func (s *BunStore) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc := new(Document)
	err := s.db.NewSelect().Model(doc).Where("d.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *BunStore) ListDocuments(ctx context.Context, offset, limit int) ([]Document, int, error) {
	var docs []Document
	total, err := s.db.NewSelect().
		Model(&docs).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (s *BunStore) UpdateDocument(ctx context.Context, doc *Document) error {
	doc.UpdatedAt = time.Now().UTC()
	_, err := s.db.NewUpdate().Model(doc).WherePK().Exec(ctx)
	return err
}

func (s *BunStore) ClaimDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.db.NewUpdate().
		Model((*Document)(nil)).
		Set("status = ?", DocumentInFlight).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status NOT IN (?)", bun.In([]DocumentStatus{DocumentInFlight, DocumentProcessing})).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConflict
	}

	doc.Status = DocumentInFlight
	return doc, nil
}

func (s *BunStore) DeleteDerived(ctx context.Context, documentID uuid.UUID) error {
	if _, err := s.db.NewDelete().Model((*Chunk)(nil)).Where("document_id = ?", documentID).Exec(ctx); err != nil {
		return err
	}
	_, err := s.db.NewDelete().Model((*Trait)(nil)).Where("document_id = ?", documentID).Exec(ctx)
	return err
}

func (s *BunStore) InsertChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, chunk := range chunks {
		chunk.CreatedAt = now
	}
	_, err := s.db.NewInsert().Model(&chunks).Exec(ctx)
	return err
}

func (s *BunStore) UpdateChunkEmbedding(ctx context.Context, chunkID uuid.UUID, embedding []float32) error {
	_, err := s.db.NewUpdate().
		Model((*Chunk)(nil)).
		Set("embedding = ?", embedding).
		Where("id = ?", chunkID).
		Exec(ctx)
	return err
}

func (s *BunStore) ListChunks(ctx context.Context, documentID uuid.UUID) ([]Chunk, error) {
	var chunks []Chunk
	err := s.db.NewSelect().
		Model(&chunks).
		Where("document_id = ?", documentID).
		Order("seq ASC", "id ASC").
		Scan(ctx)
	return chunks, err
}

func (s *BunStore) InsertTrait(ctx context.Context, trait *Trait) error {
	trait.CreatedAt = time.Now().UTC()
	_, err := s.db.NewInsert().Model(trait).Exec(ctx)
	return err
}

func (s *BunStore) ListTraits(ctx context.Context, documentID uuid.UUID) ([]Trait, error) {
	var found []Trait
	err := s.db.NewSelect().
		Model(&found).
		Where("document_id = ?", documentID).
		Order("trait_type ASC").
		Scan(ctx)
	return found, err
}

func (s *BunStore) CreateJob(ctx context.Context, job *ProcessingJob) error {
	job.CreatedAt = time.Now().UTC()
	_, err := s.db.NewInsert().Model(job).Exec(ctx)
	return err
}

func (s *BunStore) UpdateJob(ctx context.Context, job *ProcessingJob) error {
	_, err := s.db.NewUpdate().Model(job).WherePK().Exec(ctx)
	return err
}

func (s *BunStore) GetJob(ctx context.Context, id uuid.UUID) (*ProcessingJob, error) {
	job := new(ProcessingJob)
	err := s.db.NewSelect().Model(job).Where("j.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}
