// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C toolchain
// is needed. Every write that touches more than one row runs inside a
// transaction opened with _txlock=immediate: the database write lock is
// taken at BEGIN, so two concurrent edits of the same recipe cannot
// interleave their delete and insert phases.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB connection pool and implements every repository
// interface in the parent package.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/foodgram.db"  → file-based database
//   - ":memory:"          → in-memory database, used by tests
//
// An in-memory database lives inside a single connection, so the pool is
// capped at one connection in that case.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// buildDSN appends per-connection pragmas. PRAGMA statements executed on the
// pool only reach one connection, so foreign keys and the busy timeout are
// set through the DSN where every new connection picks them up.
func buildDSN(dbPath string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if !isMemory(dbPath) {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(params, "&")
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction. Any error from fn, or a panic, rolls
// the transaction back so no partial write is ever committed.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// migrations are applied in order; PRAGMA user_version records how many have
// run, so each one executes exactly once per database.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		username      TEXT NOT NULL UNIQUE,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		avatar        TEXT NOT NULL DEFAULT '',
		github_id     INTEGER UNIQUE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS follows (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		follower_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		author_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_follow UNIQUE (follower_id, author_id),
		CONSTRAINT no_self_follow CHECK (follower_id <> author_id)
	);
	CREATE INDEX IF NOT EXISTS idx_follows_author_id ON follows(author_id);
	`,
	`
	CREATE TABLE IF NOT EXISTS tags (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS ingredients (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL,
		measurement_unit TEXT NOT NULL,
		CONSTRAINT unique_ingredient UNIQUE (name, measurement_unit)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS recipes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		text         TEXT NOT NULL,
		image        TEXT NOT NULL CHECK (image <> ''),
		cooking_time INTEGER NOT NULL CHECK (cooking_time >= 1),
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes(author_id);
	CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		recipe_id     INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		ingredient_id INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
		amount        INTEGER NOT NULL CHECK (amount >= 1),
		CONSTRAINT unique_recipe_ingredient UNIQUE (recipe_id, ingredient_id)
	);

	CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		tag_id    INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (recipe_id, tag_id)
	);
	CREATE INDEX IF NOT EXISTS idx_recipe_tags_tag_id ON recipe_tags(tag_id);
	`,
	`
	CREATE TABLE IF NOT EXISTS favorites (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id  INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_favorite_recipe UNIQUE (user_id, recipe_id)
	);

	CREATE TABLE IF NOT EXISTS shopping_list (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id  INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT unique_shopping_list_recipe UNIQUE (user_id, recipe_id)
	);
	`,
}

// migrate applies every migration newer than the stored user_version.
func (db *DB) migrate() error {
	var version int
	if err := db.conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		// PRAGMA does not accept bound parameters; i is an int we control.
		stmt := migrations[i] + fmt.Sprintf("\nPRAGMA user_version = %d;", i+1)
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("applying migration %d: %w", i+1, err)
		}
	}

	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args converts ids to a []any for variadic query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
