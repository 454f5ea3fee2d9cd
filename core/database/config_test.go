package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDSNForms(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "sheets", SSLMode: "disable"}

	if got, want := DSN(cfg), "user=bot password=p@ss host=db port=5432 dbname=sheets sslmode=disable"; got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
	if got, want := MigrateURL(cfg), "postgres://bot:p%40ss@db:5432/sheets?sslmode=disable"; got != want {
		t.Fatalf("MigrateURL = %q, want %q", got, want)
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"000001_activity_events.up.sql", "000002_activity_index.up.sql", "000003_more.up.sql"}
	if got := pending(files, 1, 3); len(got) != 2 || got[0] != files[1] {
		t.Fatalf("pending(1, 3) = %v", got)
	}
	if got := pending(files, 3, 3); len(got) != 0 {
		t.Fatalf("pending without change = %v", got)
	}
	if fileVersion("notaversion.up.sql") != 0 || fileVersion("000012_x.up.sql") != 12 {
		t.Fatal("unexpected fileVersion result")
	}
}

func TestUpFilesSkipsDownAndDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000003_c.up.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got := upFiles(dir)
	if len(got) != 2 || got[0] != "000001_a.up.sql" || got[1] != "000002_b.up.sql" {
		t.Fatalf("upFiles = %v", got)
	}
	if upFiles(filepath.Join(dir, "missing")) != nil {
		t.Fatal("missing dir must yield nil")
	}
}
