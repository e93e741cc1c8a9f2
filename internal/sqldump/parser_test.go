package sqldump

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseContentSingleStatement(t *testing.T) {
	store := ParseContent("INSERT INTO `sites`(`id`, `code`, `name`) VALUES (1,'SITE-01','Main Plant'),(2,'SITE-02','Annex');")

	if got := store.RowCount("sites"); got != 2 {
		t.Fatalf("row count: got %d, want 2", got)
	}
	rows := store.RowsOf("sites")
	if rows[0].Text("code") != "SITE-01" {
		t.Errorf("code: got %q, want SITE-01", rows[0].Text("code"))
	}
	if rows[1].Text("name") != "Annex" {
		t.Errorf("name: got %q, want Annex", rows[1].Text("name"))
	}
}

func TestParseContentAccumulatesStatements(t *testing.T) {
	dump := `
INSERT INTO readings(meter, kw) VALUES (1,2.0),(2,3.0),(3,4.0);
-- interleaved noise the parser must ignore
DROP TABLE IF EXISTS something;
INSERT INTO readings(meter, kw) VALUES (4,5.0),(5,6.0),(6,7.0),(7,8.0);
`
	store := ParseContent(dump)
	if got := store.RowCount("readings"); got != 7 {
		t.Errorf("row count across statements: got %d, want 7", got)
	}
}

func TestParseContentQuoteAwareRowSplit(t *testing.T) {
	// The description contains a literal "),(" — a naive split on that
	// boundary corrupts both rows.
	dump := `INSERT INTO meters(id, description) VALUES (1,'tricky ),( inside'),(2,'plain');`
	store := ParseContent(dump)

	if got := store.RowCount("meters"); got != 2 {
		t.Fatalf("row count: got %d, want 2", got)
	}
	rows := store.RowsOf("meters")
	if rows[0].Text("description") != "tricky ),( inside" {
		t.Errorf("row 0 description corrupted: %q", rows[0].Text("description"))
	}
	if rows[1].Text("description") != "plain" {
		t.Errorf("row 1 description corrupted: %q", rows[1].Text("description"))
	}
}

func TestParseContentSkipsMalformedStatement(t *testing.T) {
	dump := `
INSERT INTO broken VALUES (1,2);
INSERT INTO sites(id, code) VALUES (1,'SITE-01');
`
	store := ParseContent(dump)
	if store.HasRows("broken") {
		t.Error("statement without a column list should be skipped")
	}
	if got := store.RowCount("sites"); got != 1 {
		t.Errorf("later statement lost: got %d rows, want 1", got)
	}
}

func TestParseContentBareIdentifiers(t *testing.T) {
	store := ParseContent("INSERT INTO users(id, username) VALUES (1,'bob');")
	if got := store.RowCount("users"); got != 1 {
		t.Fatalf("row count: got %d, want 1", got)
	}
	if names := store.TableNames(); len(names) != 1 || names[0] != "users" {
		t.Errorf("table names: got %v", names)
	}
}

func TestParseReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.sql")
	if err := os.WriteFile(path, []byte("INSERT INTO sites(id, code) VALUES (1,'A');"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := store.RowCount("sites"); got != 1 {
		t.Errorf("row count: got %d, want 1", got)
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "nope.sql")); err == nil {
		t.Error("expected an error for a missing dump file")
	}
}

func TestStoreSampleOf(t *testing.T) {
	store := ParseContent("INSERT INTO sites(id) VALUES (1),(2),(3);")
	if got := len(store.SampleOf("sites", 2)); got != 2 {
		t.Errorf("sample size: got %d, want 2", got)
	}
	if got := len(store.SampleOf("sites", 10)); got != 3 {
		t.Errorf("oversized sample: got %d, want 3", got)
	}
	if store.SampleOf("missing", 2) != nil {
		t.Error("sample of unknown table should be nil")
	}
}
