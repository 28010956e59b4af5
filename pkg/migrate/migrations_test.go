package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestListingsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "create_listings")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS listings",
		"REFERENCES users(id)",
		"CHECK (price >= 0)",
		"'Amazing Pools'",
		"geometry->>'type' = 'Point'",
		"jsonb_array_length(geometry->'coordinates') = 2",
		"DROP TABLE IF EXISTS listings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReviewsAndWishlistRestrictListingDeletes(t *testing.T) {
	reviews := readMigration(t, "create_reviews")
	if !strings.Contains(reviews, "REFERENCES listings(id) ON DELETE RESTRICT") {
		t.Errorf("reviews must not silently cascade; deletes are ordered in the repository")
	}
	wishlist := readMigration(t, "create_wishlist_items")
	for _, sub := range []string{
		"REFERENCES listings(id) ON DELETE RESTRICT",
		"UNIQUE (user_id, listing_id)",
	} {
		if !strings.Contains(wishlist, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected empty dir to fail")
	}

	if err := os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected bad filename to fail")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 4, 0, 0, time.UTC)

	path, err := createSQLMigrationAt(dir, "Add Listing Tags!", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20260301090400_add_listing_tags.sql" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := createSQLMigrationAt(dir, "add listing tags", now); err == nil {
		t.Fatalf("expected duplicate to fail")
	}
	if _, err := createSQLMigrationAt(dir, "!!!", now); err == nil {
		t.Fatalf("expected empty sanitized name to fail")
	}
}

func TestParseVersion(t *testing.T) {
	if _, err := ParseVersion("20260301090000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseVersion("2026"); err == nil {
		t.Fatalf("expected short version to fail")
	}
}

func TestValidateDirReportsMarkerProblems(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20260301090000_down_first.sql": "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"20260301090100_open_block.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	err := ValidateDir(dir)
	if err == nil {
		t.Fatalf("expected validation to fail")
	}
	for _, want := range []string{"down_first", "open_block"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s to be reported, got %v", want, err)
		}
	}
}
