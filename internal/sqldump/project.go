package sqldump

// ProjectedRow is a raw row zipped against its table's column list.
// Ephemeral: created per row during import, never persisted.
type ProjectedRow map[string]Value

// Project labels a raw value slice with column names. Short rows pad
// missing trailing values to null and long rows silently drop extras;
// hand-edited dumps are not guaranteed well-formed, and a partially
// populated row is preferred over aborting the whole table's import.
func Project(columns []string, values []Value) ProjectedRow {
	row := make(ProjectedRow, len(columns))
	for i, col := range columns {
		if i < len(values) {
			row[col] = values[i]
		} else {
			row[col] = Null()
		}
	}
	return row
}

// Get returns the value for a column, null when the column is absent.
func (r ProjectedRow) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Text returns the column's value in textual form, empty for null,
// opaque, or absent columns.
func (r ProjectedRow) Text(column string) string {
	return r.Get(column).String()
}
