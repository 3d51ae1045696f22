package main

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_users.sql", true, "0001", "create_users"},
		{"001_invalid.sql", false, "", ""},
		{"0001_test", false, "", ""},
		{"0001.sql", false, "", ""},
		{"invalid_0001_test.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			m := migrationPattern.FindStringSubmatch(tt.filename)
			if (m != nil) != tt.valid {
				t.Fatalf("match = %v, want valid=%v", m, tt.valid)
			}
			if tt.valid && (m[1] != tt.version || m[2] != tt.name) {
				t.Errorf("got version %q name %q", m[1], m[2])
			}
		})
	}
}

func TestReadMigrations_Embedded(t *testing.T) {
	migrations, err := readMigrations(embedded, "migrations", "proj", "ds")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}

	want := []string{"create_users", "create_transactions", "create_financial_goals", "create_analytics_snapshots"}
	if len(migrations) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(migrations), len(want))
	}
	for i, m := range migrations {
		if m.Version != i+1 || m.Name != want[i] {
			t.Errorf("migration %d = %04d_%s", i, m.Version, m.Name)
		}
		if strings.Contains(m.SQL, "{{") || !strings.Contains(m.SQL, "`proj.ds.") {
			t.Errorf("placeholders not substituted in %s", m.Filename)
		}
	}
}

func TestReadMigrations_Ordering(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte("SELECT 2")},
		"0001_first.sql":  {Data: []byte("SELECT 1")},
		"README.md":       {Data: []byte("ignored")},
	}

	migrations, err := readMigrations(fsys, ".", "p", "d")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) != 2 || migrations[0].Name != "first" || migrations[1].Name != "second" {
		t.Errorf("migrations = %+v", migrations)
	}

	fsys["0002_duplicate.sql"] = &fstest.MapFile{Data: []byte("SELECT 3")}
	if _, err := readMigrations(fsys, ".", "p", "d"); err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestPendingMigrations(t *testing.T) {
	all := []Migration{
		{Version: 1, Filename: "0001_a.sql", Checksum: "aaa"},
		{Version: 2, Filename: "0002_b.sql", Checksum: "bbb"},
		{Version: 3, Filename: "0003_c.sql", Checksum: "ccc"},
	}
	applied := []AppliedMigration{
		{Version: 1, Checksum: "aaa"},
		{Version: 2, Checksum: "changed"},
	}

	pending, drift := pendingMigrations(all, applied)
	if len(pending) != 1 || pending[0].Version != 3 {
		t.Errorf("pending = %+v", pending)
	}
	if len(drift) != 1 || drift[0] != "0002_b.sql" {
		t.Errorf("drift = %v", drift)
	}
}
