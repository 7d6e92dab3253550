package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.ShoppingRepository = (*DB)(nil)

// ShoppingItems sums ingredient amounts over every recipe in the user's
// shopping list, one line per (name, unit) pair.
func (db *DB) ShoppingItems(ctx context.Context, userID int64) ([]model.ShoppingItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.name, i.measurement_unit, SUM(ri.amount)
		 FROM shopping_list sl
		 JOIN recipe_ingredients ri ON ri.recipe_id = sl.recipe_id
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE sl.user_id = ?
		 GROUP BY i.name, i.measurement_unit
		 ORDER BY i.name, i.measurement_unit`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating shopping list of user %d: %w", userID, err)
	}
	defer rows.Close()

	items := []model.ShoppingItem{}
	for rows.Next() {
		var it model.ShoppingItem
		if err := rows.Scan(&it.Name, &it.MeasurementUnit, &it.Amount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning shopping item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating shopping items: %w", err)
	}
	return items, nil
}

// ShoppingRecipeNames lists the distinct names of recipes in the user's
// shopping list, sorted.
func (db *DB) ShoppingRecipeNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT r.name
		 FROM shopping_list sl
		 JOIN recipes r ON r.id = sl.recipe_id
		 WHERE sl.user_id = ?
		 ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing shopping recipes of user %d: %w", userID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning recipe name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipe names: %w", err)
	}
	return names, nil
}
