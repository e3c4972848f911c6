package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("expected shipped migrations to validate: %v", err)
	}
}

func TestMigrationsCoverEveryTable(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	var all strings.Builder
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			t.Fatalf("read %s: %v", m, err)
		}
		all.Write(b)
	}
	content := all.String()

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS carts",
		"CREATE TABLE IF NOT EXISTS cart_items",
		"quantity integer NOT NULL CHECK (quantity > 0)",
		"PRIMARY KEY (cart_id, product_id)",
		"CREATE TABLE IF NOT EXISTS wishlist_items",
		"PRIMARY KEY (user_id, product_id)",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CREATE TABLE IF NOT EXISTS store_contents",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_store_contents_section",
		"CREATE TABLE IF NOT EXISTS outbox_events",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected empty dir to fail")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "invalid migration filename") {
		t.Fatalf("expected filename error, got %v", err)
	}
}

func TestValidateBodyRequiresBalancedBlocks(t *testing.T) {
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	if err := validateBody(body); err == nil {
		t.Fatal("expected unbalanced blocks to fail")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := createSQLMigrationAt(dir, "Add Gift Notes!", at)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20260301090000_add_gift_notes.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := createSQLMigrationAt(dir, "add gift notes", at); err == nil {
		t.Fatal("expected duplicate create to fail")
	}
	if _, err := createSQLMigrationAt(dir, "!!!", at); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("20260301090000"); err != nil || v != 20260301090000 {
		t.Fatalf("unexpected parse result %d (%v)", v, err)
	}
	for _, raw := range []string{"", "2026", "2026030109000x"} {
		if _, err := parseVersion(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
