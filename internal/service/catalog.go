package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gosimple/slug"

	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// CatalogService serves the read-mostly tag and ingredient reference data
// and loads it in bulk.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *CatalogService) Tag(ctx context.Context, id int64) (*model.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

// Ingredients lists ingredients whose name starts with prefix, ignoring case.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	return s.repo.ListIngredients(ctx, strings.TrimSpace(prefix))
}

func (s *CatalogService) Ingredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

// ImportResult counts what a bulk import did.
type ImportResult struct {
	Created int
	Skipped int
}

// ImportTags inserts tags, generating a slug from the name where none is
// given. Tags whose slug already exists are skipped.
func (s *CatalogService) ImportTags(ctx context.Context, tags []model.Tag) (ImportResult, error) {
	var res ImportResult
	for i := range tags {
		t := tags[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return res, fmt.Errorf("tag %d: name is required", i+1)
		}
		t.Slug = strings.TrimSpace(t.Slug)
		if t.Slug == "" {
			t.Slug = slug.Make(t.Name)
		}
		if !slug.IsSlug(t.Slug) {
			return res, fmt.Errorf("tag %d: %q is not a valid slug", i+1, t.Slug)
		}

		created, err := s.repo.InsertTag(ctx, &t)
		if err != nil {
			return res, fmt.Errorf("tag %q: %w", t.Slug, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	s.logger.Info("tags imported", slog.Int("created", res.Created), slog.Int("skipped", res.Skipped))
	return res, nil
}

// ImportIngredients inserts ingredients, skipping existing (name, unit)
// pairs.
func (s *CatalogService) ImportIngredients(ctx context.Context, ingredients []model.Ingredient) (ImportResult, error) {
	var res ImportResult
	for i := range ingredients {
		ing := ingredients[i]
		ing.Name = strings.TrimSpace(ing.Name)
		ing.MeasurementUnit = strings.TrimSpace(ing.MeasurementUnit)
		if ing.Name == "" || ing.MeasurementUnit == "" {
			return res, fmt.Errorf("ingredient %d: name and measurement unit are required", i+1)
		}

		created, err := s.repo.InsertIngredient(ctx, &ing)
		if err != nil {
			return res, fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}

	s.logger.Info("ingredients imported", slog.Int("created", res.Created), slog.Int("skipped", res.Skipped))
	return res, nil
}
