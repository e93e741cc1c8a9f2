package domain

import "time"

// Reading represents one telemetry sample for a meter. Readings are
// append-only: the importer inserts them without deduplication, keyed
// logically by (meter, timestamp). Optional channels the legacy device
// did not report are nil rather than zero so downstream aggregation can
// tell "absent" from "measured zero".
type Reading struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MeterID   uint      `gorm:"not null;index:idx_readings_meter_time" json:"meter_id"`
	Timestamp time.Time `gorm:"not null;index:idx_readings_meter_time" json:"timestamp"`

	// Per-phase voltages (line-neutral and line-line).
	VoltageA  float64  `json:"voltage_a"`
	VoltageB  float64  `json:"voltage_b"`
	VoltageC  float64  `json:"voltage_c"`
	VoltageAB *float64 `json:"voltage_ab,omitempty"`
	VoltageBC *float64 `json:"voltage_bc,omitempty"`
	VoltageCA *float64 `json:"voltage_ca,omitempty"`
	VoltageAvg *float64 `json:"voltage_avg,omitempty"`

	// Per-phase currents.
	CurrentA   float64  `json:"current_a"`
	CurrentB   float64  `json:"current_b"`
	CurrentC   float64  `json:"current_c"`
	CurrentAvg *float64 `json:"current_avg,omitempty"`

	// Instantaneous power.
	PowerKW     float64  `json:"power_kw"`
	PowerKVAR   float64  `json:"power_kvar"`
	PowerKVA    float64  `json:"power_kva"`
	PowerFactor float64  `json:"power_factor"`
	FrequencyHz *float64 `json:"frequency_hz,omitempty"`

	// Cumulative energy counters.
	EnergyDeliveredKWH   float64 `json:"energy_delivered_kwh"`
	EnergyReceivedKWH    float64 `json:"energy_received_kwh"`
	EnergyDeliveredKVARH float64 `json:"energy_delivered_kvarh"`
	EnergyReceivedKVARH  float64 `json:"energy_received_kvarh"`

	// Demand peaks with the time they were observed. Legacy rows use a
	// zero-date sentinel when a peak was never latched.
	DemandPeakKW     *float64   `json:"demand_peak_kw,omitempty"`
	DemandPeakKWAt   *time.Time `json:"demand_peak_kw_at,omitempty"`
	DemandPeakKVAR   *float64   `json:"demand_peak_kvar,omitempty"`
	DemandPeakKVARAt *time.Time `json:"demand_peak_kvar_at,omitempty"`
	DemandPeakKVA    *float64   `json:"demand_peak_kva,omitempty"`
	DemandPeakKVAAt  *time.Time `json:"demand_peak_kva_at,omitempty"`

	// Phase angles in degrees.
	PhaseAngleA *float64 `json:"phase_angle_a,omitempty"`
	PhaseAngleB *float64 `json:"phase_angle_b,omitempty"`
	PhaseAngleC *float64 `json:"phase_angle_c,omitempty"`

	// Device metadata as reported at sample time.
	DeviceSerial    string `gorm:"type:text" json:"device_serial,omitempty"`
	FirmwareVersion string `gorm:"type:text" json:"firmware_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Reading.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Reading) TableName() string {
	return "readings"
}
