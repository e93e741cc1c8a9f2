package repository

import (
	"context"

	"github.com/gridsight/gridsight/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user data operations.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
// Parameters:
//   - db: GORM database handle (or transaction) used for queries.
// Returns:
//   - *UserRepository: repository instance bound to db.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOrCreateByEmail fetches the user with the given email, creating
// it from user when absent. Existing users are never updated.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - user: user to create if none exists; Email is the key.
// Returns:
//   - error: non-nil if the lookup or insert fails.
func (r *UserRepository) FindOrCreateByEmail(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).
		Where(&domain.User{Email: user.Email}).
		FirstOrCreate(user).Error
}

// GetByEmail retrieves a user by email.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - email: user email address.
// Returns:
//   - *domain.User: user record if found.
//   - error: non-nil if lookup fails.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Count returns the number of users.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of records.
//   - error: non-nil if the query fails.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}
