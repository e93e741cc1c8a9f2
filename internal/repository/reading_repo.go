package repository

import (
	"context"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
)

// ReadingRepository handles telemetry reading data operations.
// Readings are append-only: no upsert, no deduplication at this layer.
type ReadingRepository struct {
	db *gorm.DB
}

// NewReadingRepository creates a new ReadingRepository.
// Parameters:
//   - db: GORM database handle (or transaction) used for queries.
// Returns:
//   - *ReadingRepository: repository instance bound to db.
func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Create inserts a new reading record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - reading: reading record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ReadingRepository) Create(ctx context.Context, reading *domain.Reading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

// CountByMeter returns the number of readings stored for one meter.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meterID: meter ID.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *ReadingRepository) CountByMeter(ctx context.Context, meterID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Reading{}).Where("meter_id = ?", meterID).Count(&count).Error
	return count, err
}

// Count returns the total number of readings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *ReadingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Reading{}).Count(&count).Error
	return count, err
}
