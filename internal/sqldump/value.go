// Package sqldump recovers typed rows from legacy SQL dump files. It
// only understands INSERT INTO ... VALUES data statements; DDL and
// everything else in the dump is ignored.
package sqldump

import (
	"fmt"
	"strconv"
)

// ValueKind identifies which variant of a Value is active.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindText
	// KindOpaque marks binary/session blobs the pipeline deliberately
	// does not decode.
	KindOpaque
)

// Value is one scalar recovered from a dump row. Exactly one variant is
// active; numeric variants are chosen by the presence of a decimal
// point in the source literal.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Opaque returns the undecoded-binary placeholder value.
func Opaque() Value { return Value{kind: KindOpaque} }

// Kind returns the active variant of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float64 returns the value as a float64. Text values parse
// best-effort; null and opaque values yield zero.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindText:
		f, _ := strconv.ParseFloat(v.s, 64)
		return f
	}
	return 0
}

// String returns the value in textual form: text verbatim, numerics
// formatted, null and opaque empty.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return ""
}

// GoString returns a debug representation naming the active variant.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "Null"
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%g)", v.f)
	case KindText:
		return fmt.Sprintf("Text(%q)", v.s)
	case KindOpaque:
		return "Opaque"
	}
	return "Invalid"
}
