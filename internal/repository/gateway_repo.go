package repository

import (
	"context"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GatewayRepository handles gateway data operations.
type GatewayRepository struct {
	db *gorm.DB
}

// NewGatewayRepository creates a new GatewayRepository.
// Parameters:
//   - db: GORM database handle (or transaction) used for queries.
// Returns:
//   - *GatewayRepository: repository instance bound to db.
func NewGatewayRepository(db *gorm.DB) *GatewayRepository {
	return &GatewayRepository{db: db}
}

// UpsertBySerial creates or updates a gateway record keyed by serial
// number.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - gw: gateway record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *GatewayRepository) UpsertBySerial(ctx context.Context, gw *domain.Gateway) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "serial_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mac_address", "ip_address", "model", "organization_id", "installed_at", "updated_at",
		}),
	}).Create(gw).Error
}

// GetBySerial retrieves a gateway by serial number.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - serial: gateway serial number.
// Returns:
//   - *domain.Gateway: gateway record if found.
//   - error: non-nil if lookup fails.
func (r *GatewayRepository) GetBySerial(ctx context.Context, serial string) (*domain.Gateway, error) {
	var gw domain.Gateway
	if err := r.db.WithContext(ctx).First(&gw, "serial_number = ?", serial).Error; err != nil {
		return nil, err
	}
	return &gw, nil
}

// Count returns the number of gateways.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *GatewayRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Gateway{}).Count(&count).Error
	return count, err
}
