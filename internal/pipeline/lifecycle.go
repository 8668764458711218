package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"rfp-traits/internal/db"
)

// Document status transitions: uploaded -> in_flight -> processing ->
// completed|failed. The in_flight claim happens in the service before
// dispatch; everything here runs inside a pipeline run.

func (p *Processor) markProcessing(ctx context.Context, doc *db.Document) error {
	doc.Status = db.DocumentProcessing
	return p.store.UpdateDocument(ctx, doc)
}

func (p *Processor) markCompleted(ctx context.Context, doc *db.Document) error {
	doc.Status = db.DocumentCompleted
	return p.store.UpdateDocument(ctx, doc)
}

func (p *Processor) markFailed(ctx context.Context, doc *db.Document, runErr error) {
	doc.Status = db.DocumentFailed
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	doc.Metadata["error"] = runErr.Error()
	if err := p.store.UpdateDocument(ctx, doc); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("Failed to mark document failed")
	}
}

// Job status transitions: pending -> running -> success|failed. The step
// breadcrumb is overwritten at every stage change.

func (p *Processor) startJob(ctx context.Context, job *db.ProcessingJob) error {
	if job == nil {
		return nil
	}
	now := time.Now().UTC()
	job.Status = db.JobRunning
	job.StartedAt = &now
	job.Step = db.StepParsing
	return p.store.UpdateJob(ctx, job)
}

func (p *Processor) setJobStep(ctx context.Context, job *db.ProcessingJob, step string) error {
	if job == nil {
		return nil
	}
	job.Step = step
	return p.store.UpdateJob(ctx, job)
}

func (p *Processor) finishJob(ctx context.Context, job *db.ProcessingJob) error {
	if job == nil {
		return nil
	}
	now := time.Now().UTC()
	job.Status = db.JobSuccess
	job.Step = db.StepCompleted
	job.CompletedAt = &now
	return p.store.UpdateJob(ctx, job)
}

func (p *Processor) failJob(ctx context.Context, job *db.ProcessingJob, runErr error) {
	if job == nil {
		return
	}
	now := time.Now().UTC()
	job.Status = db.JobFailed
	job.CompletedAt = &now
	message := runErr.Error()
	job.ErrorMessage = &message
	if err := p.store.UpdateJob(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("Failed to mark job failed")
	}
}
