package model

import "time"

// Recipe is the full read representation of a recipe.
//
// Ingredients and Tags are resolved from the association tables, and the
// two viewer-relative flags are computed against whoever is reading. They
// default to false for anonymous readers.
type Recipe struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           Profile            `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	CreatedAt        time.Time          `json:"-"`
}

// RecipeIngredient is one ingredient line of a recipe, denormalized with the
// ingredient's name and unit.
type RecipeIngredient struct {
	ID              int64  `json:"id"` // ingredient id
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// IngredientLine is the write-side form of an ingredient line.
type IngredientLine struct {
	IngredientID int64 `json:"id"`
	Amount       int   `json:"amount"`
}

// RecipeSummary is the short form returned by favorite/shopping-cart toggles
// and embedded in author profiles.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeRecord holds the scalar columns of a recipe row as stored.
type RecipeRecord struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	Image       string
	CookingTime int
	CreatedAt   time.Time
}

// Summary returns the short form of the record.
func (r *RecipeRecord) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
