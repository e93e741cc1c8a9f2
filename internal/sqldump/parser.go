package sqldump

import (
	"fmt"
	"os"
	"strings"
)

const insertKeyword = "INSERT INTO"

// Parse reads an entire dump file into memory and extracts every
// INSERT INTO statement into a Store. Dumps are assumed to fit in
// memory; this is a batch tool, not a streaming one.
//
// A single malformed statement never aborts the parse: it is skipped
// and simply yields fewer rows for its table.
// Parameters:
//   - path: filesystem path of the dump file.
// Returns:
//   - *Store: per-table rows recovered from the dump.
//   - error: non-nil only if the file cannot be read.
func Parse(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump file: %w", err)
	}
	return ParseContent(string(data)), nil
}

// ParseContent extracts every INSERT INTO statement from dump text.
// Parameters:
//   - content: full dump text.
// Returns:
//   - *Store: per-table rows recovered from the text.
func ParseContent(content string) *Store {
	store := newStore()
	pos := 0
	for {
		rel := strings.Index(content[pos:], insertKeyword)
		if rel < 0 {
			break
		}
		at := pos + rel
		stmt, next, ok := parseInsert(content, at+len(insertKeyword))
		if !ok {
			pos = at + len(insertKeyword)
			continue
		}
		store.append(stmt.table, stmt.columns, stmt.rows)
		pos = next
	}
	return store
}

type insertStatement struct {
	table   string
	columns []string
	rows    [][]Value
}

// parseInsert parses one statement starting just past the INSERT INTO
// keyword. It returns ok=false for statements that do not match the
// expected `name(col, ...) VALUES (row),(row),...;` shape.
func parseInsert(content string, i int) (insertStatement, int, bool) {
	var stmt insertStatement
	n := len(content)

	i = skipSpaces(content, i)
	table, i, ok := readIdent(content, i)
	if !ok || table == "" {
		return stmt, i, false
	}
	stmt.table = table

	i = skipSpaces(content, i)
	if i >= n || content[i] != '(' {
		return stmt, i, false
	}
	closing := strings.IndexByte(content[i:], ')')
	if closing < 0 {
		return stmt, i, false
	}
	stmt.columns = splitColumns(content[i+1 : i+closing])
	if len(stmt.columns) == 0 {
		return stmt, i, false
	}
	i += closing + 1

	i = skipSpaces(content, i)
	if i+6 > n || !strings.EqualFold(content[i:i+6], "VALUES") {
		return stmt, i, false
	}
	i += 6

	// Row groups. The `),(` boundaries are found with the lexer's
	// quote-tracking rules so a literal `),(` inside a string cannot
	// corrupt the split.
	for {
		i = skipSpaces(content, i)
		if i >= n || content[i] != '(' {
			break
		}
		body, next, ok := scanRowGroup(content, i+1)
		if !ok {
			break
		}
		stmt.rows = append(stmt.rows, LexRow(body))
		i = skipSpaces(content, next)
		if i < n && content[i] == ',' {
			i++
			continue
		}
		if i < n && content[i] == ';' {
			i++
		}
		break
	}

	if len(stmt.rows) == 0 {
		return stmt, i, false
	}
	return stmt, i, true
}

// scanRowGroup consumes one parenthesized row body starting just after
// its opening paren, honoring quoted strings and nested parentheses.
// It returns the body text and the index just past the closing paren.
func scanRowGroup(content string, i int) (string, int, bool) {
	n := len(content)
	start := i
	depth := 1
	inQuote := false
	for i < n {
		c := content[i]
		if inQuote {
			switch {
			case c == '\\' && i+1 < n:
				i++
			case c == '\'':
				if i+1 < n && content[i+1] == '\'' {
					i++
				} else {
					inQuote = false
				}
			}
		} else {
			switch c {
			case '\'':
				inQuote = true
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return content[start:i], i + 1, true
				}
			}
		}
		i++
	}
	return "", i, false
}

// readIdent reads a backtick-quoted or bare identifier.
func readIdent(content string, i int) (string, int, bool) {
	n := len(content)
	if i >= n {
		return "", i, false
	}
	if content[i] == '`' {
		end := strings.IndexByte(content[i+1:], '`')
		if end < 0 {
			return "", i, false
		}
		return content[i+1 : i+1+end], i + end + 2, true
	}
	start := i
	for i < n && isIdentChar(content[i]) {
		i++
	}
	if i == start {
		return "", i, false
	}
	return content[start:i], i, true
}

// splitColumns normalizes a column list: identifier quoting stripped,
// whitespace trimmed.
func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.Trim(strings.TrimSpace(p), "`")
		if name == "" {
			return nil
		}
		columns = append(columns, name)
	}
	return columns
}

func skipSpaces(content string, i int) int {
	for i < len(content) && isSpace(content[i]) {
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
