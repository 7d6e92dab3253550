package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/media"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// ImageStore persists uploaded images. *media.Store implements it.
type ImageStore interface {
	SaveDataURL(kind, data string) (string, error)
	Delete(url string) error
}

// Rules are the configurable limits recipes are checked against.
type Rules struct {
	MinCookingTime int
	MinAmount      int
	PageSize       int
}

// RecipeInput is the body of a recipe create request. Image is a base64 data
// URL.
type RecipeInput struct {
	Name        string                 `json:"name" validate:"required,max=256"`
	Text        string                 `json:"text" validate:"required"`
	Image       string                 `json:"image" validate:"required"`
	CookingTime int                    `json:"cooking_time" validate:"lte=32767"`
	Tags        []int64                `json:"tags" validate:"required,min=1"`
	Ingredients []model.IngredientLine `json:"ingredients" validate:"required,min=1"`
}

// RecipePatch is a partial update. Nil fields are left as they are; a
// non-nil Tags or Ingredients replaces the whole set and must not be empty.
type RecipePatch struct {
	Name        *string                `json:"name" validate:"omitnil,required,max=256"`
	Text        *string                `json:"text" validate:"omitnil,required"`
	Image       *string                `json:"image" validate:"omitnil,required"`
	CookingTime *int                   `json:"cooking_time" validate:"omitnil,lte=32767"`
	Tags        []int64                `json:"tags"`
	Ingredients []model.IngredientLine `json:"ingredients"`
}

// RecipeQuery selects and pages recipes. The two boolean filters only apply
// to an authenticated viewer.
type RecipeQuery struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	PageRequest
}

// RecipeService owns the recipe aggregate: the recipe row, its ingredient
// lines and its tag set.
type RecipeService struct {
	recipes   repository.RecipeRepository
	catalog   repository.CatalogRepository
	images    ImageStore
	rules     Rules
	publicURL string
	logger    *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	catalog repository.CatalogRepository,
	images ImageStore,
	rules Rules,
	publicURL string,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		catalog:   catalog,
		images:    images,
		rules:     rules,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Create validates the input, stores the image and writes the recipe with
// its associations in one transaction. The author becomes the caller.
func (s *RecipeService) Create(ctx context.Context, authorID int64, in RecipeInput) (*model.Recipe, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkCookingTime(in.CookingTime); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, in.Tags); err != nil {
		return nil, err
	}
	if err := s.checkIngredients(ctx, in.Ingredients); err != nil {
		return nil, err
	}

	image, err := s.saveImage(in.Image)
	if err != nil {
		return nil, err
	}

	rec := &model.RecipeRecord{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       image,
		CookingTime: in.CookingTime,
	}
	if err := s.recipes.CreateRecipe(ctx, rec, in.Tags, in.Ingredients); err != nil {
		s.discardImage(image)
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.Int64("id", rec.ID),
		slog.Int64("author", authorID),
		slog.String("name", rec.Name),
	)

	return s.recipes.GetRecipe(ctx, rec.ID, authorID)
}

// Update applies patch to the recipe. Only the author may update it.
func (s *RecipeService) Update(ctx context.Context, editorID, recipeID int64, patch RecipePatch) (*model.Recipe, error) {
	rec, err := s.authorize(ctx, editorID, recipeID, "edit")
	if err != nil {
		return nil, err
	}

	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		rec.Name = strings.TrimSpace(*patch.Name)
		if rec.Name == "" {
			return nil, apperror.ValidationFailed("name", "this field is required")
		}
	}
	if patch.Text != nil {
		rec.Text = *patch.Text
	}
	if patch.CookingTime != nil {
		if err := s.checkCookingTime(*patch.CookingTime); err != nil {
			return nil, err
		}
		rec.CookingTime = *patch.CookingTime
	}
	if patch.Tags != nil {
		if err := s.checkTags(ctx, patch.Tags); err != nil {
			return nil, err
		}
	}
	if patch.Ingredients != nil {
		if err := s.checkIngredients(ctx, patch.Ingredients); err != nil {
			return nil, err
		}
	}

	oldImage := rec.Image
	if patch.Image != nil {
		image, err := s.saveImage(*patch.Image)
		if err != nil {
			return nil, err
		}
		rec.Image = image
	}

	if err := s.recipes.UpdateRecipe(ctx, rec, patch.Tags, patch.Ingredients); err != nil {
		if rec.Image != oldImage {
			s.discardImage(rec.Image)
		}
		return nil, fmt.Errorf("updating recipe %d: %w", recipeID, err)
	}
	if rec.Image != oldImage {
		s.discardImage(oldImage)
	}

	s.logger.Info("recipe updated", slog.Int64("id", recipeID), slog.Int64("editor", editorID))

	return s.recipes.GetRecipe(ctx, recipeID, editorID)
}

// Delete removes the recipe. Only the author may delete it; favorites and
// shopping-list entries go with it.
func (s *RecipeService) Delete(ctx context.Context, editorID, recipeID int64) error {
	rec, err := s.authorize(ctx, editorID, recipeID, "delete")
	if err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("deleting recipe %d: %w", recipeID, err)
	}
	s.discardImage(rec.Image)

	s.logger.Info("recipe deleted", slog.Int64("id", recipeID), slog.Int64("editor", editorID))
	return nil
}

// Get returns one recipe with viewer-relative flags (viewerID 0 = anonymous).
func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID int64) (*model.Recipe, error) {
	return s.recipes.GetRecipe(ctx, recipeID, viewerID)
}

// List pages through recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewerID int64, q RecipeQuery) (Page[model.Recipe], error) {
	page := q.PageRequest.normalize(s.rules.PageSize)

	filter := repository.RecipeFilter{
		AuthorID:    q.AuthorID,
		TagSlugs:    q.TagSlugs,
		ListOptions: page.listOptions(),
	}
	if viewerID != 0 {
		if q.IsFavorited {
			filter.FavoritedBy = viewerID
		}
		if q.IsInShoppingCart {
			filter.InShoppingCartOf = viewerID
		}
	}

	recipes, total, err := s.recipes.ListRecipes(ctx, viewerID, filter)
	if err != nil {
		return Page[model.Recipe]{}, fmt.Errorf("listing recipes: %w", err)
	}
	return newPage(recipes, total, page), nil
}

// ShortLink returns the absolute short URL for an existing recipe.
func (s *RecipeService) ShortLink(ctx context.Context, recipeID int64) (string, error) {
	if _, err := s.recipes.GetRecipeRecord(ctx, recipeID); err != nil {
		return "", err
	}
	return s.publicURL + "/s/" + strconv.FormatInt(recipeID, 10), nil
}

// ResolveShortLink returns the canonical page path a short link redirects to.
func (s *RecipeService) ResolveShortLink(ctx context.Context, recipeID int64) (string, error) {
	if _, err := s.recipes.GetRecipeRecord(ctx, recipeID); err != nil {
		return "", err
	}
	return "/recipes/" + strconv.FormatInt(recipeID, 10) + "/", nil
}

func (s *RecipeService) authorize(ctx context.Context, editorID, recipeID int64, action string) (*model.RecipeRecord, error) {
	if editorID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	rec, err := s.recipes.GetRecipeRecord(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != editorID {
		return nil, apperror.Forbidden(fmt.Sprintf("only the author can %s this recipe", action))
	}
	return rec, nil
}

func (s *RecipeService) checkCookingTime(minutes int) error {
	if minutes < s.rules.MinCookingTime {
		return apperror.ValidationFailed("cooking_time",
			fmt.Sprintf("cooking time must be at least %d minute(s)", s.rules.MinCookingTime))
	}
	if minutes > MaxSmallInt {
		return apperror.ValidationFailed("cooking_time",
			fmt.Sprintf("cooking time must be at most %d minutes", MaxSmallInt))
	}
	return nil
}

// checkTags rejects an empty set, duplicates and unknown ids. Duplicates are
// an error rather than silently collapsed.
func (s *RecipeService) checkTags(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return apperror.ValidationFailed("tags", "at least one tag is required")
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperror.ValidationFailed("tags", fmt.Sprintf("tag %d is listed more than once", id))
		}
		seen[id] = true
	}

	missing, err := s.catalog.MissingTagIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking tags: %w", err)
	}
	if len(missing) > 0 {
		return apperror.ValidationFailed("tags", "unknown tag ids: "+joinInt64s(missing))
	}
	return nil
}

func (s *RecipeService) checkIngredients(ctx context.Context, lines []model.IngredientLine) error {
	if len(lines) == 0 {
		return apperror.ValidationFailed("ingredients", "at least one ingredient is required")
	}

	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if seen[line.IngredientID] {
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("ingredient %d is listed more than once", line.IngredientID))
		}
		seen[line.IngredientID] = true
		ids = append(ids, line.IngredientID)
	}

	missing, err := s.catalog.MissingIngredientIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking ingredients: %w", err)
	}
	if len(missing) > 0 {
		return apperror.ValidationFailed("ingredients", "unknown ingredient ids: "+joinInt64s(missing))
	}

	for _, line := range lines {
		if line.Amount < s.rules.MinAmount {
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("amount of ingredient %d must be at least %d", line.IngredientID, s.rules.MinAmount))
		}
		if line.Amount > MaxSmallInt {
			return apperror.ValidationFailed("ingredients",
				fmt.Sprintf("amount of ingredient %d must be at most %d", line.IngredientID, MaxSmallInt))
		}
	}
	return nil
}

func (s *RecipeService) saveImage(data string) (string, error) {
	url, err := s.images.SaveDataURL(media.KindRecipe, data)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrTooLarge) {
			return "", apperror.ValidationFailed("image", "upload a valid base64-encoded image")
		}
		return "", fmt.Errorf("storing recipe image: %w", err)
	}
	return url, nil
}

// discardImage removes a stored image that is no longer referenced. Failure
// only leaves an orphaned file, so it is logged and not returned.
func (s *RecipeService) discardImage(url string) {
	if err := s.images.Delete(url); err != nil {
		s.logger.Warn("failed to remove image", slog.String("url", url), slog.String("error", err.Error()))
	}
}

func joinInt64s(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
