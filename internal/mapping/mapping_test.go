package mapping

import (
	"testing"

	"github.com/gridsight/gridsight/internal/sqldump"
)

func row(pairs map[string]sqldump.Value) sqldump.ProjectedRow {
	r := sqldump.ProjectedRow{}
	for k, v := range pairs {
		r[k] = v
	}
	return r
}

func TestNormalizeOrganization(t *testing.T) {
	testCases := []struct {
		name     string
		row      sqldump.ProjectedRow
		wantOK   bool
		wantCode string
	}{
		{
			name:     "explicit code",
			row:      row(map[string]sqldump.Value{"code": sqldump.Text("SITE-01"), "name": sqldump.Text("Main Plant")}),
			wantOK:   true,
			wantCode: "SITE-01",
		},
		{
			name:     "code derived from name",
			row:      row(map[string]sqldump.Value{"name": sqldump.Text("North Annex")}),
			wantOK:   true,
			wantCode: "NORTH-ANNEX",
		},
		{
			name:   "no usable key",
			row:    row(map[string]sqldump.Value{"code": sqldump.Null(), "name": sqldump.Text("  ")}),
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := NormalizeOrganization(tc.row)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if ok && d.Code != tc.wantCode {
				t.Errorf("code: got %q, want %q", d.Code, tc.wantCode)
			}
		})
	}
}

func TestNormalizeUserEmail(t *testing.T) {
	testCases := []struct {
		name      string
		row       sqldump.ProjectedRow
		wantOK    bool
		wantEmail string
	}{
		{
			name:      "valid email kept verbatim",
			row:       row(map[string]sqldump.Value{"username": sqldump.Text("bob"), "email": sqldump.Text("bob@example.com")}),
			wantOK:    true,
			wantEmail: "bob@example.com",
		},
		{
			name:      "garbage email synthesized from username",
			row:       row(map[string]sqldump.Value{"username": sqldump.Text("Bob Smith"), "email": sqldump.Text("not-an-email")}),
			wantOK:    true,
			wantEmail: "bob.smith@legacy.imported",
		},
		{
			name:   "no username and no email",
			row:    row(map[string]sqldump.Value{"email": sqldump.Null()}),
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := NormalizeUser(tc.row)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if ok && d.Email != tc.wantEmail {
				t.Errorf("email: got %q, want %q", d.Email, tc.wantEmail)
			}
		})
	}
}

func TestNormalizeGatewayRequiredFields(t *testing.T) {
	full := map[string]sqldump.Value{
		"serial": sqldump.Text("GW-1"),
		"mac":    sqldump.Text("AA:BB"),
		"ip":     sqldump.Text("1.2.3.4"),
	}
	if _, ok := NormalizeGateway(row(full)); !ok {
		t.Error("complete gateway row should normalize")
	}

	for _, missing := range []string{"serial", "mac", "ip"} {
		partial := map[string]sqldump.Value{}
		for k, v := range full {
			partial[k] = v
		}
		partial[missing] = sqldump.Null()
		if _, ok := NormalizeGateway(row(partial)); ok {
			t.Errorf("gateway row missing %s should be skipped", missing)
		}
	}
}

func TestNormalizeMeter(t *testing.T) {
	d, ok := NormalizeMeter(row(map[string]sqldump.Value{
		"name":       sqldump.Text("M-1"),
		"rtu":        sqldump.Text("GW-1"),
		"model":      sqldump.Text("ION7650.cfg"),
		"multiplier": sqldump.Text(""),
		"disabled":   sqldump.Text("0"),
	}))
	if !ok {
		t.Fatal("meter row should normalize")
	}
	if d.ConfigFile != "ION7650.cfg" {
		t.Errorf("config file: got %q", d.ConfigFile)
	}
	if d.Model != "" {
		t.Errorf("model should be empty when a config file is referenced, got %q", d.Model)
	}
	if d.Multiplier != 1.0 {
		t.Errorf("empty multiplier should default to 1.0, got %g", d.Multiplier)
	}
	if !d.Enabled {
		t.Error("disabled=0 should leave the meter enabled")
	}

	if _, ok := NormalizeMeter(row(map[string]sqldump.Value{"rtu": sqldump.Text("GW-1")})); ok {
		t.Error("meter row without a name should be skipped")
	}
}

func TestNormalizeMeterLiteralModel(t *testing.T) {
	d, ok := NormalizeMeter(row(map[string]sqldump.Value{
		"name":  sqldump.Text("M-2"),
		"model": sqldump.Text("ION7650"),
	}))
	if !ok {
		t.Fatal("meter row should normalize")
	}
	if d.Model != "ION7650" || d.ConfigFile != "" {
		t.Errorf("brand name should stay on the meter: model=%q config=%q", d.Model, d.ConfigFile)
	}
}

func TestNormalizeReadingSentinelTimestamp(t *testing.T) {
	if _, ok := NormalizeReading(row(map[string]sqldump.Value{
		"meter": sqldump.Text("M-1"),
		"time":  sqldump.Text("0000-00-00 00:00:00"),
	})); ok {
		t.Error("sentinel timestamp should skip the row")
	}
}

func TestNormalizeReadingFields(t *testing.T) {
	d, ok := NormalizeReading(row(map[string]sqldump.Value{
		"meter":       sqldump.Text("M-1"),
		"time":        sqldump.Text("2015-06-01 12:00:00"),
		"v1":          sqldump.Float(120.1),
		"i1":          sqldump.Text("garbage"),
		"freq":        sqldump.Text("garbage"),
		"kw":          sqldump.Int(42),
		"kw_max":      sqldump.Float(55.5),
		"kw_max_time": sqldump.Text("0000-00-00 00:00:00"),
	}))
	if !ok {
		t.Fatal("reading row should normalize")
	}
	if d.VoltageA != 120.1 {
		t.Errorf("v1: got %g", d.VoltageA)
	}
	if d.CurrentA != 0 {
		t.Errorf("required numeric garbage should coerce to 0, got %g", d.CurrentA)
	}
	if d.FrequencyHz != nil {
		t.Errorf("optional numeric garbage should coerce to nil, got %v", *d.FrequencyHz)
	}
	if d.PowerKW != 42 {
		t.Errorf("kw: got %g", d.PowerKW)
	}
	if d.DemandPeakKW == nil || *d.DemandPeakKW != 55.5 {
		t.Error("demand peak should be kept")
	}
	if d.DemandPeakKWAt != nil {
		t.Error("sentinel demand time should normalize to nil, not an error")
	}
}

func TestLegacyTimeSentinels(t *testing.T) {
	for _, s := range []string{"0000-00-00 00:00:00", "0000-00-00", ""} {
		if got := LegacyTime(sqldump.Text(s)); got != nil {
			t.Errorf("LegacyTime(%q) = %v, want nil", s, got)
		}
	}
	if got := LegacyTime(sqldump.Text("2015-06-01 12:00:00")); got == nil {
		t.Error("valid timestamp should parse")
	}
	if got := LegacyTime(sqldump.Text("2015-06-01")); got == nil {
		t.Error("date-only timestamp should parse")
	}
}

func TestConfigFilename(t *testing.T) {
	testCases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"ION7650.cfg", "ION7650.cfg", true},
		{"device.INI", "device.INI", true},
		{"ION7650", "", false},
		{"Schneider PM800", "", false},
		{"notes.txt", "", false},
	}
	for _, tc := range testCases {
		got, ok := ConfigFilename(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ConfigFilename(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
