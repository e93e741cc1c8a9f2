package domain

import "time"

// Gateway represents a field RTU/data concentrator that meters report
// through. SerialNumber is the natural key used for upserts during
// import; MAC and IP addresses are required by the importer because a
// gateway without network identity cannot be polled.
type Gateway struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SerialNumber   string     `gorm:"type:text;not null;uniqueIndex:idx_gateways_serial" json:"serial_number"`
	MACAddress     string     `gorm:"type:text;not null" json:"mac_address"`
	IPAddress      string     `gorm:"type:text;not null" json:"ip_address"`
	Model          string     `gorm:"type:text" json:"model,omitempty"`
	OrganizationID uint       `gorm:"not null;index" json:"organization_id"`
	InstalledAt    *time.Time `json:"installed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Gateway.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Gateway) TableName() string {
	return "gateways"
}
