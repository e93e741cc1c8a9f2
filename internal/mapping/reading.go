package mapping

import (
	"strings"
	"time"

	"github.com/gridsight/gridsight/internal/sqldump"
)

// ReadingDraft is the normalized form of one legacy telemetry row.
// Required channels coerce garbage to zero; optional channels coerce
// garbage to nil. Demand peak timestamps honor the zero-date sentinel.
type ReadingDraft struct {
	MeterName string
	Timestamp *time.Time

	VoltageA   float64
	VoltageB   float64
	VoltageC   float64
	VoltageAB  *float64
	VoltageBC  *float64
	VoltageCA  *float64
	VoltageAvg *float64

	CurrentA   float64
	CurrentB   float64
	CurrentC   float64
	CurrentAvg *float64

	PowerKW     float64
	PowerKVAR   float64
	PowerKVA    float64
	PowerFactor float64
	FrequencyHz *float64

	EnergyDeliveredKWH   float64
	EnergyReceivedKWH    float64
	EnergyDeliveredKVARH float64
	EnergyReceivedKVARH  float64

	DemandPeakKW     *float64
	DemandPeakKWAt   *time.Time
	DemandPeakKVAR   *float64
	DemandPeakKVARAt *time.Time
	DemandPeakKVA    *float64
	DemandPeakKVAAt  *time.Time

	PhaseAngleA *float64
	PhaseAngleB *float64
	PhaseAngleC *float64

	DeviceSerial    string
	FirmwareVersion string
}

var readingRules = []Rule[ReadingDraft]{
	{Source: "meter", Apply: func(v sqldump.Value, d *ReadingDraft) { d.MeterName = strings.TrimSpace(v.String()) }},
	{Source: "time", Apply: func(v sqldump.Value, d *ReadingDraft) { d.Timestamp = LegacyTime(v) }},

	{Source: "v1", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageA = RequiredFloat(v) }},
	{Source: "v2", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageB = RequiredFloat(v) }},
	{Source: "v3", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageC = RequiredFloat(v) }},
	{Source: "v12", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageAB = OptionalFloat(v) }},
	{Source: "v23", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageBC = OptionalFloat(v) }},
	{Source: "v31", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageCA = OptionalFloat(v) }},
	{Source: "v_avg", Apply: func(v sqldump.Value, d *ReadingDraft) { d.VoltageAvg = OptionalFloat(v) }},

	{Source: "i1", Apply: func(v sqldump.Value, d *ReadingDraft) { d.CurrentA = RequiredFloat(v) }},
	{Source: "i2", Apply: func(v sqldump.Value, d *ReadingDraft) { d.CurrentB = RequiredFloat(v) }},
	{Source: "i3", Apply: func(v sqldump.Value, d *ReadingDraft) { d.CurrentC = RequiredFloat(v) }},
	{Source: "i_avg", Apply: func(v sqldump.Value, d *ReadingDraft) { d.CurrentAvg = OptionalFloat(v) }},

	{Source: "kw", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PowerKW = RequiredFloat(v) }},
	{Source: "kvar", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PowerKVAR = RequiredFloat(v) }},
	{Source: "kva", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PowerKVA = RequiredFloat(v) }},
	{Source: "pf", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PowerFactor = RequiredFloat(v) }},
	{Source: "freq", Apply: func(v sqldump.Value, d *ReadingDraft) { d.FrequencyHz = OptionalFloat(v) }},

	{Source: "kwh_del", Apply: func(v sqldump.Value, d *ReadingDraft) { d.EnergyDeliveredKWH = RequiredFloat(v) }},
	{Source: "kwh_rec", Apply: func(v sqldump.Value, d *ReadingDraft) { d.EnergyReceivedKWH = RequiredFloat(v) }},
	{Source: "kvarh_del", Apply: func(v sqldump.Value, d *ReadingDraft) { d.EnergyDeliveredKVARH = RequiredFloat(v) }},
	{Source: "kvarh_rec", Apply: func(v sqldump.Value, d *ReadingDraft) { d.EnergyReceivedKVARH = RequiredFloat(v) }},

	{Source: "kw_max", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKW = OptionalFloat(v) }},
	{Source: "kw_max_time", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKWAt = LegacyTime(v) }},
	{Source: "kvar_max", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKVAR = OptionalFloat(v) }},
	{Source: "kvar_max_time", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKVARAt = LegacyTime(v) }},
	{Source: "kva_max", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKVA = OptionalFloat(v) }},
	{Source: "kva_max_time", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DemandPeakKVAAt = LegacyTime(v) }},

	{Source: "ang_a", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PhaseAngleA = OptionalFloat(v) }},
	{Source: "ang_b", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PhaseAngleB = OptionalFloat(v) }},
	{Source: "ang_c", Apply: func(v sqldump.Value, d *ReadingDraft) { d.PhaseAngleC = OptionalFloat(v) }},

	{Source: "serial", Apply: func(v sqldump.Value, d *ReadingDraft) { d.DeviceSerial = strings.TrimSpace(v.String()) }},
	{Source: "firmware", Apply: func(v sqldump.Value, d *ReadingDraft) { d.FirmwareVersion = strings.TrimSpace(v.String()) }},
}

// NormalizeReading maps a legacy telemetry row to a draft. Rows whose
// timestamp is the zero-date sentinel, or that do not name a meter,
// are skipped.
// Parameters:
//   - row: projected legacy row.
// Returns:
//   - *ReadingDraft: normalized draft, nil when skipped.
//   - bool: false when the row cannot be imported.
func NormalizeReading(row sqldump.ProjectedRow) (*ReadingDraft, bool) {
	var d ReadingDraft
	applyRules(row, readingRules, &d)
	if d.Timestamp == nil || d.MeterName == "" {
		return nil, false
	}
	return &d, true
}
