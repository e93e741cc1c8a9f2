package domain

import "time"

// MeterConfig represents a device configuration file referenced by one
// or more meters. Legacy dumps stored the configuration filename in the
// meter's model column; the importer links it here by ID instead of
// keeping the filename as free text on the meter.
type MeterConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"type:text;not null;uniqueIndex:idx_meter_configs_filename" json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for MeterConfig.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (MeterConfig) TableName() string {
	return "meter_configs"
}

// Meter represents a metering point. The natural key for upserts is
// (name, organization, gateway); a meter cannot exist without its
// gateway.
type Meter struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:text;not null;uniqueIndex:idx_meters_natural" json:"name"`
	OrganizationID uint      `gorm:"not null;uniqueIndex:idx_meters_natural" json:"organization_id"`
	GatewayID      uint      `gorm:"not null;uniqueIndex:idx_meters_natural" json:"gateway_id"`
	ConfigID       *uint     `gorm:"index" json:"config_id,omitempty"`
	Model          string    `gorm:"type:text" json:"model,omitempty"`
	Multiplier     float64   `gorm:"not null;default:1" json:"multiplier"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	Enabled        bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Meter.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Meter) TableName() string {
	return "meters"
}
