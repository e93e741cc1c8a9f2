package domain

import "time"

// Organization represents a site or customer organization that owns
// gateways and meters. The code is the natural key used during import.
type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:text;not null;uniqueIndex:idx_organizations_code" json:"code"`
	Name      string    `gorm:"type:text" json:"name"`
	Address   string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Organization.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Organization) TableName() string {
	return "organizations"
}
