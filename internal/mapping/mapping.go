package mapping

import (
	"strings"
	"time"

	"github.com/gridsight/gridsight/internal/sqldump"
)

// Rule binds one legacy source column to a coercion that fills part of
// a destination draft. Keeping the rules as data rather than inline
// conditionals makes each mapping independently testable.
type Rule[T any] struct {
	Source string
	Apply  func(v sqldump.Value, d *T)
}

func applyRules[T any](row sqldump.ProjectedRow, rules []Rule[T], d *T) {
	for _, r := range rules {
		r.Apply(row.Get(r.Source), d)
	}
}

// OrganizationDraft is the normalized form of a legacy sites row.
type OrganizationDraft struct {
	Code    string
	Name    string
	Address string
}

var organizationRules = []Rule[OrganizationDraft]{
	{Source: "code", Apply: func(v sqldump.Value, d *OrganizationDraft) { d.Code = strings.TrimSpace(v.String()) }},
	{Source: "name", Apply: func(v sqldump.Value, d *OrganizationDraft) { d.Name = strings.TrimSpace(v.String()) }},
	{Source: "address", Apply: func(v sqldump.Value, d *OrganizationDraft) { d.Address = strings.TrimSpace(v.String()) }},
}

// NormalizeOrganization maps a legacy sites row to a draft. Rows with
// neither a code nor a name to derive one from are skipped.
// Parameters:
//   - row: projected legacy row.
// Returns:
//   - *OrganizationDraft: normalized draft, nil when skipped.
//   - bool: false when the row lacks a usable natural key.
func NormalizeOrganization(row sqldump.ProjectedRow) (*OrganizationDraft, bool) {
	var d OrganizationDraft
	applyRules(row, organizationRules, &d)
	if d.Code == "" {
		d.Code = CodeFromName(d.Name)
	}
	if d.Code == "" {
		return nil, false
	}
	return &d, true
}

// UserDraft is the normalized form of a legacy users row.
type UserDraft struct {
	Username string
	FullName string
	Email    string
	SiteCode string
}

var userRules = []Rule[UserDraft]{
	{Source: "username", Apply: func(v sqldump.Value, d *UserDraft) { d.Username = strings.TrimSpace(v.String()) }},
	{Source: "fullname", Apply: func(v sqldump.Value, d *UserDraft) { d.FullName = strings.TrimSpace(v.String()) }},
	{Source: "email", Apply: func(v sqldump.Value, d *UserDraft) { d.Email = strings.TrimSpace(v.String()) }},
	{Source: "site", Apply: func(v sqldump.Value, d *UserDraft) { d.SiteCode = strings.TrimSpace(v.String()) }},
}

// NormalizeUser maps a legacy users row to a draft. The email becomes
// the natural key: the literal column value if it is syntactically
// valid, otherwise an address synthesized from the username.
// Parameters:
//   - row: projected legacy row.
// Returns:
//   - *UserDraft: normalized draft, nil when skipped.
//   - bool: false when the row lacks a usable natural key.
func NormalizeUser(row sqldump.ProjectedRow) (*UserDraft, bool) {
	var d UserDraft
	applyRules(row, userRules, &d)
	if !ValidEmail(d.Email) {
		if d.Username == "" {
			return nil, false
		}
		d.Email = SynthesizeEmail(d.Username)
	}
	if d.FullName == "" {
		d.FullName = d.Username
	}
	if d.FullName == "" {
		d.FullName = d.Email
	}
	return &d, true
}

// GatewayDraft is the normalized form of a legacy rtus row.
type GatewayDraft struct {
	Serial      string
	MACAddress  string
	IPAddress   string
	SiteCode    string
	Model       string
	InstalledAt *time.Time
}

var gatewayRules = []Rule[GatewayDraft]{
	{Source: "serial", Apply: func(v sqldump.Value, d *GatewayDraft) { d.Serial = strings.TrimSpace(v.String()) }},
	{Source: "mac", Apply: func(v sqldump.Value, d *GatewayDraft) { d.MACAddress = strings.TrimSpace(v.String()) }},
	{Source: "ip", Apply: func(v sqldump.Value, d *GatewayDraft) { d.IPAddress = strings.TrimSpace(v.String()) }},
	{Source: "site", Apply: func(v sqldump.Value, d *GatewayDraft) { d.SiteCode = strings.TrimSpace(v.String()) }},
	{Source: "model", Apply: func(v sqldump.Value, d *GatewayDraft) { d.Model = strings.TrimSpace(v.String()) }},
	{Source: "installed", Apply: func(v sqldump.Value, d *GatewayDraft) { d.InstalledAt = LegacyTime(v) }},
}

// NormalizeGateway maps a legacy rtus row to a draft. Serial, MAC, and
// IP are all required; a gateway without network identity cannot be
// polled and the row is skipped.
// Parameters:
//   - row: projected legacy row.
// Returns:
//   - *GatewayDraft: normalized draft, nil when skipped.
//   - bool: false when a required field is missing.
func NormalizeGateway(row sqldump.ProjectedRow) (*GatewayDraft, bool) {
	var d GatewayDraft
	applyRules(row, gatewayRules, &d)
	if d.Serial == "" || d.MACAddress == "" || d.IPAddress == "" {
		return nil, false
	}
	return &d, true
}

// MeterDraft is the normalized form of a legacy meters row. When the
// legacy model column referenced a configuration file, ConfigFile
// carries the filename and Model stays empty.
type MeterDraft struct {
	Name          string
	SiteCode      string
	GatewaySerial string
	Model         string
	ConfigFile    string
	Multiplier    float64
	Description   string
	Enabled       bool
}

var meterRules = []Rule[MeterDraft]{
	{Source: "name", Apply: func(v sqldump.Value, d *MeterDraft) { d.Name = strings.TrimSpace(v.String()) }},
	{Source: "site", Apply: func(v sqldump.Value, d *MeterDraft) { d.SiteCode = strings.TrimSpace(v.String()) }},
	{Source: "rtu", Apply: func(v sqldump.Value, d *MeterDraft) { d.GatewaySerial = strings.TrimSpace(v.String()) }},
	{Source: "model", Apply: func(v sqldump.Value, d *MeterDraft) {
		model := strings.TrimSpace(v.String())
		if filename, ok := ConfigFilename(model); ok {
			d.ConfigFile = filename
			return
		}
		d.Model = model
	}},
	{Source: "multiplier", Apply: func(v sqldump.Value, d *MeterDraft) { d.Multiplier = Multiplier(v) }},
	{Source: "description", Apply: func(v sqldump.Value, d *MeterDraft) { d.Description = strings.TrimSpace(v.String()) }},
	{Source: "disabled", Apply: func(v sqldump.Value, d *MeterDraft) {
		if disabled := LegacyBool(v); disabled != nil {
			d.Enabled = !*disabled
		}
	}},
}

// NormalizeMeter maps a legacy meters row to a draft. A meter without
// a name has no natural key and is skipped.
// Parameters:
//   - row: projected legacy row.
// Returns:
//   - *MeterDraft: normalized draft, nil when skipped.
//   - bool: false when the row lacks a usable natural key.
func NormalizeMeter(row sqldump.ProjectedRow) (*MeterDraft, bool) {
	d := MeterDraft{Multiplier: 1.0, Enabled: true}
	applyRules(row, meterRules, &d)
	if d.Name == "" {
		return nil, false
	}
	return &d, true
}
