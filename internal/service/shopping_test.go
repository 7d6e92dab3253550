package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
)

func TestShoppingService_Text(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	tag := env.tag(t, "baking")
	egg := env.ingredient(t, "egg", "pcs")
	flour := env.ingredient(t, "Flour", "g")
	sugar := env.ingredient(t, "sugar", "g")

	cake := env.recipe(t, alice.ID, "Cake", []int64{tag.ID},
		line(egg.ID, 1), line(flour.ID, 200), line(sugar.ID, 100))
	bread := env.recipe(t, alice.ID, "Bread", []int64{tag.ID},
		line(egg.ID, 1), line(flour.ID, 50))

	for _, r := range []*model.Recipe{cake, bread} {
		_, err := env.relations.Add(ctx, model.RelationShoppingCart, alice.ID, r.ID)
		require.NoError(t, err)
	}

	text, err := env.shopping.Text(ctx, alice.ID)
	require.NoError(t, err)

	want := "Shopping list for 2024-05-01:\n" +
		"Products:\n" +
		"1. Egg - 2 pcs\n" +
		"2. Flour - 250 g\n" +
		"3. Sugar - 100 g\n" +
		"Recipes:\n" +
		"- Bread\n" +
		"- Cake\n"
	assert.Equal(t, want, string(text))
}

func TestShoppingService_SameNameDifferentUnits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	tag := env.tag(t, "baking")
	sugarG := env.ingredient(t, "sugar", "g")
	sugarSpoon := env.ingredient(t, "sugar", "tbsp")

	r := env.recipe(t, alice.ID, "Tea", []int64{tag.ID}, line(sugarG.ID, 5), line(sugarSpoon.ID, 2))
	_, err := env.relations.Add(ctx, model.RelationShoppingCart, alice.ID, r.ID)
	require.NoError(t, err)

	report, err := env.shopping.Report(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.ShoppingItem{
		{Name: "Sugar", MeasurementUnit: "g", Amount: 5},
		{Name: "Sugar", MeasurementUnit: "tbsp", Amount: 2},
	}, report.Products)
}

func TestShoppingService_EmptyList(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	text, err := env.shopping.Text(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list for 2024-05-01:\nProducts:\nRecipes:\n", string(text))
}

func TestShoppingService_RequiresUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.shopping.Report(context.Background(), 0)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"egg":    "Egg",
		"FLOUR":  "Flour",
		"яблоко": "Яблоко",
	}
	for in, want := range tests {
		assert.Equal(t, want, capitalize(in), "capitalize(%q)", in)
	}
}
