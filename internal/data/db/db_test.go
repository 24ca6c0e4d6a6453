package db

import (
	"path/filepath"
	"testing"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	gdb, err := Open(logger.Nop(), "sqlite", filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !gdb.Migrator().HasTable("blog_run") {
		t.Fatalf("blog_run table missing")
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	if _, err := Open(nil, "sqlite", " "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if _, err := Open(nil, "mysql", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
