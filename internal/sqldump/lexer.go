package sqldump

import (
	"strconv"
	"strings"
)

// LexRow converts the raw text of one VALUES row (the content between
// the row's parentheses) into an ordered list of typed values. The scan
// is a single left-to-right pass with no backtracking.
//
// Quoting rules follow what mysqldump emits: backslash escapes the next
// character, a doubled '' is an escaped single quote, NULL is
// case-sensitive, and a _binary payload is skipped undecoded.
func LexRow(raw string) []Value {
	values := make([]Value, 0, 8)
	i, n := 0, len(raw)

	for {
		for i < n && isSpace(raw[i]) {
			i++
		}
		if i >= n {
			break
		}

		switch {
		case strings.HasPrefix(raw[i:], "NULL"):
			values = append(values, Null())
			i += 4

		case strings.HasPrefix(raw[i:], "_binary"):
			// Session/binary blobs are not needed downstream; skip the
			// payload up to the next top-level comma.
			values = append(values, Opaque())
			i = skipToTopComma(raw, i+len("_binary"))

		case raw[i] == '\'':
			s, next := lexQuoted(raw, i+1)
			values = append(values, Text(s))
			i = next

		default:
			start := i
			for i < n && raw[i] != ',' {
				i++
			}
			lit := strings.TrimSpace(raw[start:i])
			values = append(values, lexBare(lit))
		}

		for i < n && isSpace(raw[i]) {
			i++
		}
		if i < n && raw[i] == ',' {
			i++
		}
	}

	return values
}

// lexQuoted consumes a quoted string starting just after the opening
// quote. It returns the decoded string and the index just past the
// closing quote. An unterminated string consumes the rest of the input
// rather than failing; dumps are not guaranteed well-formed.
func lexQuoted(raw string, i int) (string, int) {
	var b strings.Builder
	n := len(raw)
	for i < n {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < n:
			b.WriteByte(raw[i+1])
			i += 2
		case c == '\'':
			if i+1 < n && raw[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			return b.String(), i + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// lexBare classifies an unquoted literal: integer without a decimal
// point, float with one, anything else text verbatim as a defensive
// fallback.
func lexBare(lit string) Value {
	if lit == "" {
		return Text("")
	}
	if !strings.Contains(lit, ".") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(n)
		}
	} else if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return Float(f)
	}
	return Text(lit)
}

// skipToTopComma advances past characters until the next comma that is
// not inside a quoted string, returning the comma's index (or the end
// of input).
func skipToTopComma(raw string, i int) int {
	n := len(raw)
	inQuote := false
	for i < n {
		c := raw[i]
		if inQuote {
			switch {
			case c == '\\' && i+1 < n:
				i++
			case c == '\'':
				if i+1 < n && raw[i+1] == '\'' {
					i++
				} else {
					inQuote = false
				}
			}
		} else {
			if c == '\'' {
				inQuote = true
			} else if c == ',' {
				return i
			}
		}
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
