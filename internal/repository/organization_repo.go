package repository

import (
	"context"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
)

// OrganizationRepository handles organization data operations. It binds
// to whichever *gorm.DB it is constructed over, so the orchestrator can
// run it inside the import transaction.
type OrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository.
// Parameters:
//   - db: GORM database handle (or transaction) used for queries.
// Returns:
//   - *OrganizationRepository: repository instance bound to db.
func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindOrCreateByCode fetches the organization with the given code,
// creating it from org when absent. Existing organizations are never
// updated, so reruns cannot clobber manual edits made after a prior
// import.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - org: organization to create if none exists; Code is the key.
// Returns:
//   - error: non-nil if the lookup or insert fails.
func (r *OrganizationRepository) FindOrCreateByCode(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).
		Where(&domain.Organization{Code: org.Code}).
		FirstOrCreate(org).Error
}

// GetByCode retrieves an organization by its code.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - code: organization code.
// Returns:
//   - *domain.Organization: organization record if found.
//   - error: non-nil if lookup fails.
func (r *OrganizationRepository) GetByCode(ctx context.Context, code string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.WithContext(ctx).First(&org, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Count returns the number of organizations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *OrganizationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Organization{}).Count(&count).Error
	return count, err
}
