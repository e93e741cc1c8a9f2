package sqldump

import "testing"

func TestProjectPadsShortRows(t *testing.T) {
	columns := []string{"id", "code", "name"}
	row := Project(columns, []Value{Int(1), Text("SITE-01")})

	if row.Get("id") != Int(1) {
		t.Errorf("id: got %#v", row.Get("id"))
	}
	if !row.Get("name").IsNull() {
		t.Errorf("missing trailing field should project to null, got %#v", row.Get("name"))
	}
}

func TestProjectDropsExtraValues(t *testing.T) {
	columns := []string{"id"}
	row := Project(columns, []Value{Int(1), Text("stray"), Text("stray2")})

	if len(row) != 1 {
		t.Errorf("extra values should be dropped: got %d entries", len(row))
	}
}

func TestProjectedRowAbsentColumn(t *testing.T) {
	row := Project([]string{"id"}, []Value{Int(1)})
	if !row.Get("nope").IsNull() {
		t.Error("absent column should read as null")
	}
	if row.Text("nope") != "" {
		t.Error("absent column should read as empty text")
	}
}
