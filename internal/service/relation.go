package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// RelationService manages the per-user recipe lists (favorites and the
// shopping cart). Both kinds follow the same rules, so one service handles
// them with the kind as a parameter.
type RelationService struct {
	relations repository.RelationRepository
	recipes   repository.RecipeRepository
	logger    *slog.Logger
}

func NewRelationService(relations repository.RelationRepository, recipes repository.RecipeRepository, logger *slog.Logger) *RelationService {
	return &RelationService{relations: relations, recipes: recipes, logger: logger}
}

// Add puts the recipe on the user's list and returns its summary. A recipe
// already on the list is a Conflict naming the recipe.
func (s *RelationService) Add(ctx context.Context, kind model.RelationKind, userID, recipeID int64) (*model.RecipeSummary, error) {
	if err := checkRelationCall(kind, userID); err != nil {
		return nil, err
	}

	rec, err := s.recipes.GetRecipeRecord(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.relations.HasRelation(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", kind, err)
	}
	if exists {
		return nil, apperror.Conflict("recipe",
			fmt.Sprintf("recipe %q is already in %s", rec.Name, kind.Label()))
	}

	// The UNIQUE constraint still decides a race between two adds.
	if err := s.relations.AddRelation(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}

	s.logger.Info("recipe added to list",
		slog.String("kind", string(kind)),
		slog.Int64("user", userID),
		slog.Int64("recipe", recipeID),
	)

	summary := rec.Summary()
	return &summary, nil
}

// Remove takes the recipe off the user's list; NotFound if it was not there.
func (s *RelationService) Remove(ctx context.Context, kind model.RelationKind, userID, recipeID int64) error {
	if err := checkRelationCall(kind, userID); err != nil {
		return err
	}

	if _, err := s.recipes.GetRecipeRecord(ctx, recipeID); err != nil {
		return err
	}
	if err := s.relations.RemoveRelation(ctx, kind, userID, recipeID); err != nil {
		return err
	}

	s.logger.Info("recipe removed from list",
		slog.String("kind", string(kind)),
		slog.Int64("user", userID),
		slog.Int64("recipe", recipeID),
	)
	return nil
}

func checkRelationCall(kind model.RelationKind, userID int64) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown relation kind %q", kind)
	}
	if userID == 0 {
		return apperror.Unauthorized("authentication required")
	}
	return nil
}
