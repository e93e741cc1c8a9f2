// Package mapping translates projected legacy dump rows into drafts of
// the destination entities. Every translation is a pure function over
// an explicit per-entity rule table, so individual coercions stay
// independently testable.
package mapping

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gridsight/gridsight/internal/sqldump"
)

// Legacy table names the parser is expected to recover. Sites, meters,
// and users must yield rows for a dump to be importable; readings are
// optional (a dump may carry only master data).
const (
	TableSites    = "sites"
	TableUsers    = "users"
	TableGateways = "rtus"
	TableMeters   = "meters"
	TableReadings = "readings"
)

// Zero-date sentinels the legacy schema used instead of NULL.
const (
	sentinelDateTime = "0000-00-00 00:00:00"
	sentinelDate     = "0000-00-00"

	legacyTimeLayout = "2006-01-02 15:04:05"
	legacyDateLayout = "2006-01-02"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Filename extensions that mark a meter's model column as a device
// configuration file reference rather than a literal brand name.
var configExtensions = map[string]bool{
	".cfg": true,
	".ini": true,
	".xml": true,
	".dcf": true,
}

// LegacyTime parses a legacy date/time string. The zero-date sentinels
// normalize to nil, never to an error.
func LegacyTime(v sqldump.Value) *time.Time {
	s := strings.TrimSpace(v.String())
	if s == "" || s == sentinelDateTime || s == sentinelDate {
		return nil
	}
	if t, err := time.Parse(legacyTimeLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(legacyDateLayout, s); err == nil {
		return &t
	}
	return nil
}

// LegacyBool maps the legacy boolean encodings ("1"/"0", "YES"/"NO")
// to a bool, nil for absent or unrecognized values.
func LegacyBool(v sqldump.Value) *bool {
	s := strings.TrimSpace(strings.ToUpper(v.String()))
	switch s {
	case "1", "YES", "TRUE", "Y":
		b := true
		return &b
	case "0", "NO", "FALSE", "N":
		b := false
		return &b
	}
	return nil
}

// RequiredFloat coerces a value for a required numeric destination
// field. Non-numeric garbage becomes 0.0 rather than failing the row,
// matching legacy permissiveness.
func RequiredFloat(v sqldump.Value) float64 {
	switch v.Kind() {
	case sqldump.KindInt, sqldump.KindFloat:
		return v.Float64()
	case sqldump.KindText:
		return v.Float64()
	}
	return 0
}

// OptionalFloat coerces a value for a nullable numeric destination
// field: nil for null, opaque, empty, or non-numeric values.
func OptionalFloat(v sqldump.Value) *float64 {
	switch v.Kind() {
	case sqldump.KindInt, sqldump.KindFloat:
		f := v.Float64()
		return &f
	case sqldump.KindText:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// Multiplier coerces a meter multiplier: empty or zero defaults to 1.0
// so imported meters never silently zero out their readings.
func Multiplier(v sqldump.Value) float64 {
	f := RequiredFloat(v)
	if f == 0 {
		return 1.0
	}
	return f
}

// ValidEmail reports whether s is a syntactically plausible email
// address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// SynthesizeEmail builds a placeholder address from a legacy username
// for rows whose email column holds something unusable.
func SynthesizeEmail(username string) string {
	slug := strings.ToLower(strings.TrimSpace(username))
	slug = strings.ReplaceAll(slug, " ", ".")
	return slug + "@legacy.imported"
}

// ConfigFilename reports whether a meter model value is actually a
// reference to a device configuration file, returning the cleaned
// filename when it is.
func ConfigFilename(model string) (string, bool) {
	name := strings.TrimSpace(model)
	if !strings.Contains(name, ".") {
		return "", false
	}
	if !configExtensions[strings.ToLower(filepath.Ext(name))] {
		return "", false
	}
	return name, true
}

// CodeFromName derives an organization code from a free-text site name
// when the legacy row carries no explicit code.
func CodeFromName(name string) string {
	code := strings.ToUpper(strings.TrimSpace(name))
	code = strings.Join(strings.Fields(code), "-")
	return code
}
