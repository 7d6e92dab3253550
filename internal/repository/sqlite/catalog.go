package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.CatalogRepository = (*DB)(nil)

func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

func (db *DB) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, slug FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %d: %w", id, err)
	}
	return &t, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case. An empty prefix returns everything.
func (db *DB) ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE name LIKE ? ESCAPE '\'
		 ORDER BY name, measurement_unit`,
		escapeLike(namePrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ingredients: %w", err)
	}
	return ingredients, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (db *DB) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	var i model.Ingredient
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
	).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("ingredient", id)
		}
		return nil, fmt.Errorf("sqlite: getting ingredient %d: %w", id, err)
	}
	return &i, nil
}

func (db *DB) MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, db.conn, "tags", ids)
}

func (db *DB) MissingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return missingIDs(ctx, db.conn, "ingredients", ids)
}

// missingIDs returns, in input order, the ids with no row in table. table is
// always a constant from this package.
func missingIDs(ctx context.Context, q querier, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking %s ids: %w", table, err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s id: %w", table, err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s ids: %w", table, err)
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// InsertTag inserts tag unless its slug already exists. On insert tag.ID is
// set; otherwise tag.ID is set to the existing row's id.
func (db *DB) InsertTag(ctx context.Context, tag *model.Tag) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (name, slug) VALUES (?, ?) ON CONFLICT (slug) DO NOTHING`,
		tag.Name, tag.Slug,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting tag %q: %w", tag.Slug, err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `SELECT id FROM tags WHERE slug = ?`, tag.Slug).Scan(&tag.ID)
	if err != nil {
		return false, fmt.Errorf("sqlite: reading tag id %q: %w", tag.Slug, err)
	}
	return created > 0, nil
}

// InsertIngredient inserts ingredient unless (name, unit) already exists.
func (db *DB) InsertIngredient(ctx context.Context, ingredient *model.Ingredient) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)
		 ON CONFLICT (name, measurement_unit) DO NOTHING`,
		ingredient.Name, ingredient.MeasurementUnit,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting ingredient %q: %w", ingredient.Name, err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM ingredients WHERE name = ? AND measurement_unit = ?`,
		ingredient.Name, ingredient.MeasurementUnit,
	).Scan(&ingredient.ID)
	if err != nil {
		return false, fmt.Errorf("sqlite: reading ingredient id %q: %w", ingredient.Name, err)
	}
	return created > 0, nil
}
