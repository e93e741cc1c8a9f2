package repository

import (
	"context"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeterRepository handles meter and meter-config data operations.
type MeterRepository struct {
	db *gorm.DB
}

// NewMeterRepository creates a new MeterRepository.
// Parameters:
//   - db: GORM database handle (or transaction) used for queries.
// Returns:
//   - *MeterRepository: repository instance bound to db.
func NewMeterRepository(db *gorm.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// Upsert creates or updates a meter record keyed by its natural key
// (name, organization, gateway).
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meter: meter record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *MeterRepository) Upsert(ctx context.Context, meter *domain.Meter) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}, {Name: "organization_id"}, {Name: "gateway_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"config_id", "model", "multiplier", "description", "enabled", "updated_at",
		}),
	}).Create(meter).Error
}

// GetByNaturalKey retrieves a meter by (name, organization, gateway).
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: meter name.
//   - organizationID: owning organization ID.
//   - gatewayID: owning gateway ID.
// Returns:
//   - *domain.Meter: meter record if found.
//   - error: non-nil if lookup fails.
func (r *MeterRepository) GetByNaturalKey(ctx context.Context, name string, organizationID, gatewayID uint) (*domain.Meter, error) {
	var meter domain.Meter
	if err := r.db.WithContext(ctx).
		First(&meter, "name = ? AND organization_id = ? AND gateway_id = ?", name, organizationID, gatewayID).Error; err != nil {
		return nil, err
	}
	return &meter, nil
}

// FindOrCreateConfig fetches the meter configuration entity for a
// filename, creating it when absent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cfg: configuration record to create if none exists; Filename is the key.
// Returns:
//   - error: non-nil if the lookup or insert fails.
func (r *MeterRepository) FindOrCreateConfig(ctx context.Context, cfg *domain.MeterConfig) error {
	return r.db.WithContext(ctx).
		Where(&domain.MeterConfig{Filename: cfg.Filename}).
		FirstOrCreate(cfg).Error
}

// Count returns the number of meters.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *MeterRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Meter{}).Count(&count).Error
	return count, err
}
