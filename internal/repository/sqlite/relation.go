package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.RelationRepository = (*DB)(nil)

// relationTable maps a relation kind to its link table. Favorites and the
// shopping list share one shape: (user_id, recipe_id) unique.
func relationTable(kind model.RelationKind) (string, error) {
	switch kind {
	case model.RelationFavorite:
		return "favorites", nil
	case model.RelationShoppingCart:
		return "shopping_list", nil
	default:
		return "", fmt.Errorf("sqlite: unknown relation kind %q", kind)
	}
}

func (db *DB) AddRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, recipe_id, created_at) VALUES (?, ?, ?)`,
		userID, recipeID, time.Now().UTC(),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperror.Conflict("recipe",
			fmt.Sprintf("recipe %d is already in %s", recipeID, kind.Label()))
	case isForeignKeyViolation(err):
		return apperror.NotFound("recipe", recipeID)
	default:
		return fmt.Errorf("sqlite: adding recipe %d to %s of user %d: %w", recipeID, table, userID, err)
	}
}

func (db *DB) RemoveRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND recipe_id = ?`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("sqlite: removing recipe %d from %s of user %d: %w", recipeID, table, userID, err)
	}
	return requireAffected(result,
		apperror.NotFoundMessage(fmt.Sprintf("recipe %d is not in %s", recipeID, kind.Label())))
}

func (db *DB) HasRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) (bool, error) {
	table, err := relationTable(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE user_id = ? AND recipe_id = ?)`,
		userID, recipeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s of user %d: %w", table, userID, err)
	}
	return exists, nil
}

// relatedRecipeIDs returns which of recipeIDs the user has linked under kind.
func (db *DB) relatedRecipeIDs(ctx context.Context, kind model.RelationKind, userID int64, recipeIDs []int64) ([]int64, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT recipe_id FROM `+table+`
		 WHERE user_id = ? AND recipe_id IN (`+placeholders(len(recipeIDs))+`)`,
		append([]any{userID}, int64Args(recipeIDs)...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading %s flags: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s flag: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s flags: %w", table, err)
	}
	return ids, nil
}
