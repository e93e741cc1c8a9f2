package repository

import (
	"context"
	"time"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles import job state. It always operates on its own
// database session, never inside the import transaction, so progress
// writes stay visible to external callers while the transaction is
// open.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - job: job record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *JobRepository) Create(ctx context.Context, job *domain.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.ImportJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List retrieves jobs ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.ImportJob: matching job records.
//   - error: non-nil if the query fails.
func (r *JobRepository) List(ctx context.Context, limit, offset int) ([]domain.ImportJob, error) {
	var jobs []domain.ImportJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkProcessing transitions a job to processing, recording the start
// time and the total record count discovered by the parse.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - total: total records across all importable tables.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) MarkProcessing(ctx context.Context, id string, total int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        domain.JobStatusProcessing,
			"total_records": total,
			"started_at":    &now,
		}).Error
}

// UpdateProgress writes the processed and skipped counters.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - processed: records processed so far.
//   - skipped: records skipped so far.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, processed, skipped int) error {
	return r.db.WithContext(ctx).Model(&domain.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_records": processed,
			"skipped_records":   skipped,
		}).Error
}

// MarkCompleted transitions a job to completed with its final counts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - result: per-entity import counts.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string, result domain.JobResult) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCompleted,
			"result":       result,
			"completed_at": &now,
		}).Error
}

// MarkFailed transitions a job to failed, preserving the original error
// message for operator diagnosis.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - message: human-readable error string.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, message string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusFailed,
			"error":        message,
			"completed_at": &now,
		}).Error
}

// MarkCancelled transitions a job to cancelled.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - error: non-nil if the update fails.
func (r *JobRepository) MarkCancelled(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCancelled,
			"completed_at": &now,
		}).Error
}
