package sqldump

// Table holds every row recovered for one legacy table. Columns keep
// declaration order from the first INSERT statement seen; later
// statements for the same table are assumed to share that order, which
// holds for dump-tool output.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value
}

// Store is the in-memory result of parsing a dump: table name to rows.
// It is built once per parse and never mutated afterwards, so it may be
// read from any number of goroutines.
type Store struct {
	tables map[string]*Table
	order  []string
}

func newStore() *Store {
	return &Store{tables: map[string]*Table{}}
}

func (s *Store) append(name string, columns []string, rows [][]Value) {
	t, ok := s.tables[name]
	if !ok {
		t = &Table{Name: name, Columns: columns}
		s.tables[name] = t
		s.order = append(s.order, name)
	}
	t.Rows = append(t.Rows, rows...)
}

// TableNames returns the table names in first-sighting order.
func (s *Store) TableNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// HasRows reports whether the dump yielded at least one row for the
// named table.
func (s *Store) HasRows(name string) bool {
	t, ok := s.tables[name]
	return ok && len(t.Rows) > 0
}

// RowCount returns the number of rows recovered for the named table,
// zero if the table never appeared in the dump.
func (s *Store) RowCount(name string) int {
	if t, ok := s.tables[name]; ok {
		return len(t.Rows)
	}
	return 0
}

// RowsOf projects every row of the named table against its column
// list. The projection is built lazily per call; rows are not retained
// in projected form.
func (s *Store) RowsOf(name string) []ProjectedRow {
	t, ok := s.tables[name]
	if !ok {
		return nil
	}
	rows := make([]ProjectedRow, len(t.Rows))
	for i, raw := range t.Rows {
		rows[i] = Project(t.Columns, raw)
	}
	return rows
}

// SampleOf projects at most n rows of the named table, for inspection
// and dry-run tooling.
func (s *Store) SampleOf(name string, n int) []ProjectedRow {
	t, ok := s.tables[name]
	if !ok || n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	rows := make([]ProjectedRow, n)
	for i := 0; i < n; i++ {
		rows[i] = Project(t.Columns, t.Rows[i])
	}
	return rows
}
