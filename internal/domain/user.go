package domain

import "time"

// User represents an application user migrated from the legacy users
// table. Email is the natural key used during import; accounts created
// by the importer carry a placeholder password and are expected to go
// through a password reset before first login.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:text;not null" json:"name"`
	Email          string    `gorm:"type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	Password       string    `gorm:"type:text" json:"-"`
	OrganizationID *uint     `gorm:"index" json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (User) TableName() string {
	return "users"
}
