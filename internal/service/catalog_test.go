package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
)

func TestCatalogService_ImportTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.catalog.ImportTags(ctx, []model.Tag{
		{Name: "Breakfast"},
		{Name: "Late Dinner"},
		{Name: "Lunch", Slug: "lunch"},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 3}, res)

	tags, err := env.catalog.Tags(ctx)
	require.NoError(t, err)
	slugs := make([]string, len(tags))
	for i, tag := range tags {
		slugs[i] = tag.Slug
	}
	assert.ElementsMatch(t, []string{"breakfast", "late-dinner", "lunch"}, slugs)

	again, err := env.catalog.ImportTags(ctx, []model.Tag{{Name: "Breakfast"}})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 1}, again)
}

func TestCatalogService_ImportTags_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.ImportTags(context.Background(), []model.Tag{{Name: ""}})
	assert.Error(t, err)

	_, err = env.catalog.ImportTags(context.Background(), []model.Tag{{Name: "X", Slug: "Not A Slug"}})
	assert.Error(t, err)
}

func TestCatalogService_Ingredients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.catalog.ImportIngredients(ctx, []model.Ingredient{
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2, Skipped: 1}, res)

	found, err := env.catalog.Ingredients(ctx, " SU")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "sugar", found[0].Name)

	got, err := env.catalog.Ingredient(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, found[0], *got)

	_, err = env.catalog.Ingredient(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = env.catalog.Tag(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.catalog.ImportIngredients(ctx, []model.Ingredient{{Name: "pepper"}})
	assert.Error(t, err, "unit is required")
}
