package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.RecipeRepository = (*DB)(nil)

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.image, r.cooking_time, r.created_at`

func scanRecipeRecord(s scanner) (*model.RecipeRecord, error) {
	var r model.RecipeRecord
	if err := s.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Text, &r.Image, &r.CookingTime, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe inserts the recipe, its tag memberships and its ingredient
// lines in one transaction. Either all rows are written or none are.
func (db *DB) CreateRecipe(ctx context.Context, rec *model.RecipeRecord, tagIDs []int64, lines []model.IngredientLine) error {
	rec.CreatedAt = time.Now().UTC()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (author_id, name, text, image, cooking_time, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.AuthorID,
			rec.Name,
			rec.Text,
			rec.Image,
			rec.CookingTime,
			rec.CreatedAt,
		)
		if err != nil {
			if isCheckViolation(err) {
				return apperror.ValidationFailed("recipe", "recipe fields violate storage constraints")
			}
			if isForeignKeyViolation(err) {
				return apperror.NotFound("user", rec.AuthorID)
			}
			return fmt.Errorf("sqlite: inserting recipe: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading recipe id: %w", err)
		}

		if err := insertRecipeTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		if err := insertRecipeIngredients(ctx, tx, id, lines); err != nil {
			return err
		}

		rec.ID = id
		return nil
	})
}

// UpdateRecipe rewrites the scalar columns of rec. For each non-nil slice the
// recipe's existing associations are deleted and the new set inserted. The
// whole operation is a single transaction: if any insert fails, the previous
// associations are left exactly as they were.
func (db *DB) UpdateRecipe(ctx context.Context, rec *model.RecipeRecord, tagIDs []int64, lines []model.IngredientLine) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE recipes SET name = ?, text = ?, image = ?, cooking_time = ? WHERE id = ?`,
			rec.Name,
			rec.Text,
			rec.Image,
			rec.CookingTime,
			rec.ID,
		)
		if err != nil {
			if isCheckViolation(err) {
				return apperror.ValidationFailed("recipe", "recipe fields violate storage constraints")
			}
			return fmt.Errorf("sqlite: updating recipe %d: %w", rec.ID, err)
		}
		if err := requireAffected(result, apperror.NotFound("recipe", rec.ID)); err != nil {
			return err
		}

		if tagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, rec.ID); err != nil {
				return fmt.Errorf("sqlite: clearing tags of recipe %d: %w", rec.ID, err)
			}
			if err := insertRecipeTags(ctx, tx, rec.ID, tagIDs); err != nil {
				return err
			}
		}

		if lines != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, rec.ID); err != nil {
				return fmt.Errorf("sqlite: clearing ingredients of recipe %d: %w", rec.ID, err)
			}
			if err := insertRecipeIngredients(ctx, tx, rec.ID, lines); err != nil {
				return err
			}
		}

		return nil
	})
}

func insertRecipeTags(ctx context.Context, tx *sql.Tx, recipeID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, recipeID, tagID)
		if err == nil {
			continue
		}
		switch {
		case isUniqueViolation(err):
			return apperror.ValidationFailed("tags", fmt.Sprintf("tag %d is listed more than once", tagID))
		case isForeignKeyViolation(err):
			return missingRowsError(ctx, tx, "tags", "tag", tagIDs)
		default:
			return fmt.Errorf("sqlite: adding tag %d to recipe %d: %w", tagID, recipeID, err)
		}
	}
	return nil
}

func insertRecipeIngredients(ctx context.Context, tx *sql.Tx, recipeID int64, lines []model.IngredientLine) error {
	for _, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES (?, ?, ?)`,
			recipeID, line.IngredientID, line.Amount,
		)
		if err == nil {
			continue
		}
		switch {
		case isUniqueViolation(err):
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("ingredient %d is listed more than once", line.IngredientID))
		case isCheckViolation(err):
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("amount of ingredient %d must be positive", line.IngredientID))
		case isForeignKeyViolation(err):
			ids := make([]int64, len(lines))
			for i, l := range lines {
				ids[i] = l.IngredientID
			}
			return missingRowsError(ctx, tx, "ingredients", "ingredient", ids)
		default:
			return fmt.Errorf("sqlite: adding ingredient %d to recipe %d: %w", line.IngredientID, recipeID, err)
		}
	}
	return nil
}

// missingRowsError builds the validation error listing every unknown id after
// a foreign key violation.
func missingRowsError(ctx context.Context, q querier, table, noun string, ids []int64) error {
	missing, err := missingIDs(ctx, q, table, ids)
	if err != nil {
		return err
	}
	return apperror.ValidationFailed(table, fmt.Sprintf("unknown %s ids: %s", noun, joinIDs(missing)))
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// DeleteRecipe removes the recipe; its associations, favorites and
// shopping-list entries go with it through ON DELETE CASCADE.
func (db *DB) DeleteRecipe(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %d: %w", id, err)
	}
	return requireAffected(result, apperror.NotFound("recipe", id))
}

func (db *DB) GetRecipeRecord(ctx context.Context, id int64) (*model.RecipeRecord, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)
	rec, err := scanRecipeRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %d: %w", id, err)
	}
	return rec, nil
}

// GetRecipe returns the full representation of one recipe as seen by
// viewerID (0 for anonymous).
func (db *DB) GetRecipe(ctx context.Context, id, viewerID int64) (*model.Recipe, error) {
	rec, err := db.GetRecipeRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	recipes, err := db.hydrate(ctx, viewerID, []model.RecipeRecord{*rec})
	if err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// ListRecipes pages through recipes matching filter, newest first. Ids are
// assigned in creation order, so ordering by id is ordering by created_at
// without depending on how timestamps are serialized.
func (db *DB) ListRecipes(ctx context.Context, viewerID int64, filter repository.RecipeFilter) ([]model.Recipe, int, error) {
	where, args := recipeFilterClause(filter)

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes r`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting recipes: %w", err)
	}

	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r`+where+`
		 ORDER BY r.id DESC
		 LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing recipes: %w", err)
	}

	records := []model.RecipeRecord{}
	for rows.Next() {
		rec, err := scanRecipeRecord(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}
		records = append(records, *rec)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating recipes: %w", err)
	}

	recipes, err := db.hydrate(ctx, viewerID, records)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func recipeFilterClause(f repository.RecipeFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.AuthorID != 0 {
		conds = append(conds, `r.author_id = ?`)
		args = append(args, f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug IN (`+placeholders(len(f.TagSlugs))+`))`)
		for _, s := range f.TagSlugs {
			args = append(args, s)
		}
	}
	if f.FavoritedBy != 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM favorites fv WHERE fv.recipe_id = r.id AND fv.user_id = ?)`)
		args = append(args, f.FavoritedBy)
	}
	if f.InShoppingCartOf != 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM shopping_list sl WHERE sl.recipe_id = r.id AND sl.user_id = ?)`)
		args = append(args, f.InShoppingCartOf)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAuthorRecipes returns the author's newest recipes. limit <= 0 means no
// limit (SQLite treats LIMIT -1 as unbounded).
func (db *DB) ListAuthorRecipes(ctx context.Context, authorID int64, limit int) ([]model.RecipeSummary, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE author_id = ?`, authorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting recipes of user %d: %w", authorID, err)
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, image, cooking_time FROM recipes
		 WHERE author_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		authorID, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing recipes of user %d: %w", authorID, err)
	}
	defer rows.Close()

	summaries := []model.RecipeSummary{}
	for rows.Next() {
		var s model.RecipeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.CookingTime); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning recipe summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating recipe summaries: %w", err)
	}
	return summaries, total, nil
}

// hydrate resolves tags, ingredient lines, authors and viewer flags for a
// page of recipe rows with one query per association rather than per recipe.
func (db *DB) hydrate(ctx context.Context, viewerID int64, records []model.RecipeRecord) ([]model.Recipe, error) {
	recipes := make([]model.Recipe, len(records))
	if len(records) == 0 {
		return recipes, nil
	}

	index := make(map[int64]int, len(records))
	ids := make([]int64, len(records))
	authorSet := make(map[int64]bool)
	var authorIDs []int64
	for i, rec := range records {
		recipes[i] = model.Recipe{
			ID:          rec.ID,
			Tags:        []model.Tag{},
			Ingredients: []model.RecipeIngredient{},
			Name:        rec.Name,
			Image:       rec.Image,
			Text:        rec.Text,
			CookingTime: rec.CookingTime,
			CreatedAt:   rec.CreatedAt,
		}
		index[rec.ID] = i
		ids[i] = rec.ID
		if !authorSet[rec.AuthorID] {
			authorSet[rec.AuthorID] = true
			authorIDs = append(authorIDs, rec.AuthorID)
		}
	}
	in := placeholders(len(ids))

	// Tags
	rows, err := db.conn.QueryContext(ctx,
		`SELECT rt.recipe_id, t.id, t.name, t.slug
		 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id IN (`+in+`)
		 ORDER BY t.name, t.id`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading recipe tags: %w", err)
	}
	for rows.Next() {
		var (
			recipeID int64
			t        model.Tag
		)
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Slug); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning recipe tag: %w", err)
		}
		i := index[recipeID]
		recipes[i].Tags = append(recipes[i].Tags, t)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipe tags: %w", err)
	}

	// Ingredient lines
	rows, err = db.conn.QueryContext(ctx,
		`SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		 FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id IN (`+in+`)
		 ORDER BY ri.id`,
		int64Args(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading recipe ingredients: %w", err)
	}
	for rows.Next() {
		var (
			recipeID int64
			ri       model.RecipeIngredient
		)
		if err := rows.Scan(&recipeID, &ri.ID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning recipe ingredient: %w", err)
		}
		i := index[recipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, ri)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipe ingredients: %w", err)
	}

	// Authors
	rows, err = db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM users u WHERE u.id IN (`+placeholders(len(authorIDs))+`)`,
		append([]any{viewerID}, int64Args(authorIDs)...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading recipe authors: %w", err)
	}
	authors, err := collectProfiles(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Profile, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for i, rec := range records {
		recipes[i].Author = byID[rec.AuthorID]
	}

	if viewerID == 0 {
		return recipes, nil
	}

	// Viewer flags
	for _, kind := range []model.RelationKind{model.RelationFavorite, model.RelationShoppingCart} {
		marked, err := db.relatedRecipeIDs(ctx, kind, viewerID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range marked {
			i := index[id]
			if kind == model.RelationFavorite {
				recipes[i].IsFavorited = true
			} else {
				recipes[i].IsInShoppingCart = true
			}
		}
	}

	return recipes, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	rows.Close()
	return err
}
