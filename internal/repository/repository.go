// Package repository declares the storage interfaces the service layer
// depends on. The sqlite sub-package implements all of them on one *DB.
package repository

import (
	"context"

	"github.com/sakif/foodgram/internal/model"
)

// ListOptions is offset pagination shared by every listing.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetProfile resolves is_subscribed against viewerID (0 = anonymous).
	GetProfile(ctx context.Context, id, viewerID int64) (*model.Profile, error)
	ListProfiles(ctx context.Context, viewerID int64, opts ListOptions) ([]model.Profile, int, error)
	UpdateAvatar(ctx context.Context, id int64, avatar string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

type FollowRepository interface {
	CreateFollow(ctx context.Context, followerID, authorID int64) error
	DeleteFollow(ctx context.Context, followerID, authorID int64) error
	IsFollowing(ctx context.Context, followerID, authorID int64) (bool, error)
	// ListFollowing returns the authors followerID follows plus the total.
	ListFollowing(ctx context.Context, followerID int64, opts ListOptions) ([]model.Profile, int, error)
}

type CatalogRepository interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// MissingTagIDs returns the ids in ids that have no tag row.
	MissingTagIDs(ctx context.Context, ids []int64) ([]int64, error)
	MissingIngredientIDs(ctx context.Context, ids []int64) ([]int64, error)
	// InsertTag and InsertIngredient skip rows whose natural key already
	// exists and report whether a row was created.
	InsertTag(ctx context.Context, tag *model.Tag) (bool, error)
	InsertIngredient(ctx context.Context, ingredient *model.Ingredient) (bool, error)
}

// RecipeFilter narrows ListRecipes. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID         int64
	TagSlugs         []string
	FavoritedBy      int64
	InShoppingCartOf int64
	ListOptions
}

type RecipeRepository interface {
	// CreateRecipe inserts the recipe row and its associations in a single
	// transaction and sets rec.ID and rec.CreatedAt.
	CreateRecipe(ctx context.Context, rec *model.RecipeRecord, tagIDs []int64, lines []model.IngredientLine) error
	// UpdateRecipe rewrites the scalar columns and, for each non-nil slice,
	// replaces the whole association set, all in one transaction.
	UpdateRecipe(ctx context.Context, rec *model.RecipeRecord, tagIDs []int64, lines []model.IngredientLine) error
	DeleteRecipe(ctx context.Context, id int64) error
	GetRecipeRecord(ctx context.Context, id int64) (*model.RecipeRecord, error)
	GetRecipe(ctx context.Context, id, viewerID int64) (*model.Recipe, error)
	ListRecipes(ctx context.Context, viewerID int64, filter RecipeFilter) ([]model.Recipe, int, error)
	// ListAuthorRecipes returns at most limit summaries (limit <= 0 means
	// all) and the author's total recipe count.
	ListAuthorRecipes(ctx context.Context, authorID int64, limit int) ([]model.RecipeSummary, int, error)
}

type RelationRepository interface {
	AddRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) error
	RemoveRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) error
	HasRelation(ctx context.Context, kind model.RelationKind, userID, recipeID int64) (bool, error)
}

type ShoppingRepository interface {
	// ShoppingItems sums the ingredient lines of every recipe in the user's
	// shopping list, grouped by ingredient and ordered by name.
	ShoppingItems(ctx context.Context, userID int64) ([]model.ShoppingItem, error)
	ShoppingRecipeNames(ctx context.Context, userID int64) ([]string, error)
}
