package migrate

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{"0001_classifications.sql", "0001", "classifications", true},
		{"0012_add_index.sql", "0012", "add_index", true},
		{"1_short.sql", "", "", false},
		{"0001_missing_ext", "", "", false},
		{"README.md", "", "", false},
	}
	for _, tt := range tests {
		v, n, ok := parseMigrationFilename(tt.in)
		if v != tt.wantVersion || n != tt.wantName || ok != tt.wantOK {
			t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, v, n, ok, tt.wantVersion, tt.wantName, tt.wantOK)
		}
	}
}

func TestEmbedded_Sorted(t *testing.T) {
	ms, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	if len(ms) == 0 {
		t.Fatal("Embedded returned no migrations")
	}
	if ms[0].Version != "0001" || ms[0].Name != "classifications" {
		t.Errorf("first migration = %s_%s, want 0001_classifications", ms[0].Version, ms[0].Name)
	}
	for i := 1; i < len(ms); i++ {
		if ms[i-1].Version >= ms[i].Version {
			t.Errorf("migrations out of order: %s before %s", ms[i-1].Version, ms[i].Version)
		}
	}
}

func TestRun_AppliesOnce(t *testing.T) {
	db := openMemory(t)

	first, err := Run(db, quiet())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all, _ := Embedded()
	if len(first) != len(all) {
		t.Fatalf("first Run applied %d migrations, want %d", len(first), len(all))
	}

	second, err := Run(db, quiet())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second Run applied %v, want none", second)
	}

	if _, err := db.Exec(`INSERT INTO classifications (ts, label, was_posted) VALUES ('2021-07-01T00:00:00Z', 'Night', 0)`); err != nil {
		t.Errorf("insert after migrate: %v", err)
	}

	applied, err := Applied(db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	for _, m := range all {
		if !applied[m.Version] {
			t.Errorf("version %s not recorded", m.Version)
		}
	}
}

func TestApplied_FreshDatabase(t *testing.T) {
	applied, err := Applied(openMemory(t))
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("Applied on fresh db = %v, want empty", applied)
	}
}
