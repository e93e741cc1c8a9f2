package service

import (
	"context"

	"github.com/gridsight/gridsight/internal/logger"
	"github.com/gridsight/gridsight/internal/repository"
)

// ProgressReporter receives progress checkpoints from the orchestrator.
// The orchestrator decides the cadence (per phase for master data, per
// batch for readings); implementations decide where the counters go.
type ProgressReporter interface {
	Report(ctx context.Context, processed, skipped int)
}

// jobProgressReporter persists counters on the import job record. It
// writes on its own database session, outside the import transaction,
// so progress stays visible to external callers while the transaction
// is open. Write failures are logged and swallowed: a progress write
// must never fail an import.
type jobProgressReporter struct {
	jobs   *repository.JobRepository
	jobID  string
	logger *logger.Logger
}

// NewJobProgressReporter creates a reporter that writes through the job
// repository.
// Parameters:
//   - jobs: job repository bound to the main database handle.
//   - jobID: job whose counters to update.
//   - log: logger instance.
// Returns:
//   - ProgressReporter: reporter instance.
func NewJobProgressReporter(jobs *repository.JobRepository, jobID string, log *logger.Logger) ProgressReporter {
	return &jobProgressReporter{jobs: jobs, jobID: jobID, logger: log}
}

func (r *jobProgressReporter) Report(ctx context.Context, processed, skipped int) {
	if err := r.jobs.UpdateProgress(ctx, r.jobID, processed, skipped); err != nil {
		r.logger.WithFields(logger.Fields{
			logger.FieldJobID: r.jobID,
		}).WithError(err).Debug("Failed to write progress counters")
	}
}
