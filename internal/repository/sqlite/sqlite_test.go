package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sakif/foodgram/internal/model"
)

// Every test gets its own ":memory:" database: nothing touches disk and
// nothing leaks between tests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First " + username,
		LastName:     "Last " + username,
		PasswordHash: "hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestTag(t *testing.T, db *DB, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: "Tag " + slug, Slug: slug}
	if _, err := db.InsertTag(context.Background(), tag); err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

func createTestIngredient(t *testing.T, db *DB, name, unit string) *model.Ingredient {
	t.Helper()
	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if _, err := db.InsertIngredient(context.Background(), ing); err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ing
}

func createTestRecipe(t *testing.T, db *DB, authorID int64, name string, tagIDs []int64, lines []model.IngredientLine) *model.RecipeRecord {
	t.Helper()
	rec := &model.RecipeRecord{
		AuthorID:    authorID,
		Name:        name,
		Text:        "Cook " + name,
		Image:       fmt.Sprintf("/media/recipes/%s.png", name),
		CookingTime: 10,
	}
	if err := db.CreateRecipe(context.Background(), rec, tagIDs, lines); err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return rec
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	var version int
	if err := db.conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatalf("reading user_version: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("user_version = %d, want %d", version, len(migrations))
	}
}

func TestNew_ForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	if err := db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("reading foreign_keys: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		path    string
		wantWAL bool
		wantSep string
	}{
		{path: ":memory:", wantWAL: false, wantSep: ":memory:?"},
		{path: "data/foodgram.db", wantWAL: true, wantSep: "data/foodgram.db?"},
		{path: "file:x?mode=memory", wantWAL: false, wantSep: "file:x?mode=memory&"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dsn := buildDSN(tt.path)
			if got := dsn[:len(tt.wantSep)]; got != tt.wantSep {
				t.Errorf("buildDSN(%q) prefix = %q, want %q", tt.path, got, tt.wantSep)
			}
			hasWAL := strings.Contains(dsn, "_pragma=journal_mode(WAL)")
			if hasWAL != tt.wantWAL {
				t.Errorf("buildDSN(%q) WAL = %v, want %v", tt.path, hasWAL, tt.wantWAL)
			}
			if !strings.Contains(dsn, "_pragma=foreign_keys(1)") {
				t.Errorf("buildDSN(%q) = %q, missing foreign_keys pragma", tt.path, dsn)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
