package database

import (
	"testing"

	"github.com/isdelr/circuitgen-be/internal/models"
)

func TestNewAndMigrate_SQLiteMemory(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	// Running twice must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}

	for _, table := range []any{&models.User{}, &models.Circuit{}, &models.Component{}, &models.AICourse{}} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table for %T was not created", table)
		}
	}
}

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		url        string
		wantSQLite bool
		wantName   string
	}{
		{"postgres://u:p@localhost:5432/db", false, "postgres"},
		{"postgresql://u:p@localhost/db", false, "postgres"},
		{"./circuitgen.db", true, "sqlite"},
		{"sqlite://data.db", true, "sqlite"},
	}
	for _, tt := range tests {
		d, isSQLite := dialectorFor(tt.url)
		if isSQLite != tt.wantSQLite {
			t.Errorf("dialectorFor(%q) sqlite = %v, want %v", tt.url, isSQLite, tt.wantSQLite)
		}
		if d.Name() != tt.wantName {
			t.Errorf("dialectorFor(%q) name = %q, want %q", tt.url, d.Name(), tt.wantName)
		}
	}
}
