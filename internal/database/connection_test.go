package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aisle-md/aislemd/internal/config"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("AISLE_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := filepath.Join(config.GetAisleDir(), "aisle.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	var version int
	var dirty bool
	if err := ctx.DB.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatalf("failed to read schema_migrations: %v", err)
	}
	if version != 2 || dirty {
		t.Fatalf("expected clean schema version 2, got %d (dirty=%v)", version, dirty)
	}

	if !tableExists(t, ctx.DB, "items") {
		t.Fatalf("expected table items to exist")
	}
}

func TestReopenDoesNotReapplyMigrations(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "aisle.db")

	first, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("first CreateDatabase error: %v", err)
	}
	insertItem(t, first.DB, "r1", "Milk")
	if err := CloseDatabase(first); err != nil {
		t.Fatalf("CloseDatabase error: %v", err)
	}

	second, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = CloseDatabase(second) })

	assertCount(t, second.DB, "items", 1)
}

func TestMemoryDatabaseIsPrivate(t *testing.T) {
	a, err := CreateDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = CloseDatabase(a) })

	b, err := CreateDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = CloseDatabase(b) })

	insertItem(t, a.DB, "r1", "Milk")

	assertCount(t, a.DB, "items", 1)
	assertCount(t, b.DB, "items", 0)
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	insertItem(t, ctx.DB, "r1", "Milk")
	insertItem(t, ctx.DB, "r2", "Bread")
	assertCount(t, ctx.DB, "items", 2)

	removed, err := ClearDatabase(ctx)
	if err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed rows, got %d", removed)
	}

	assertCount(t, ctx.DB, "items", 0)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func insertItem(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	now := time.Now().UTC()
	if _, err := db.Exec(`INSERT INTO items(id, name, created_at, updated_at) VALUES(?, ?, ?, ?)`, id, name, now, now); err != nil {
		t.Fatalf("insertItem failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
