package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/foodgram/internal/model"
)

func TestShoppingItems_SumsPerIngredient(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	r1 := createTestRecipe(t, f.db, f.author.ID, "Omelette", nil, []model.IngredientLine{
		{IngredientID: f.egg.ID, Amount: 2},
		{IngredientID: f.milk.ID, Amount: 50},
	})
	r2 := createTestRecipe(t, f.db, f.author.ID, "Cake", nil, []model.IngredientLine{
		{IngredientID: f.egg.ID, Amount: 3},
		{IngredientID: f.flour.ID, Amount: 200},
	})
	// Not in the cart; must not count.
	createTestRecipe(t, f.db, f.author.ID, "Bread", nil, []model.IngredientLine{
		{IngredientID: f.flour.ID, Amount: 500},
	})

	for _, id := range []int64{r1.ID, r2.ID} {
		if err := f.db.AddRelation(ctx, model.RelationShoppingCart, f.reader.ID, id); err != nil {
			t.Fatalf("AddRelation() error = %v", err)
		}
	}

	items, err := f.db.ShoppingItems(ctx, f.reader.ID)
	if err != nil {
		t.Fatalf("ShoppingItems() error = %v", err)
	}

	want := []model.ShoppingItem{
		{Name: "egg", MeasurementUnit: "pcs", Amount: 5},
		{Name: "flour", MeasurementUnit: "g", Amount: 200},
		{Name: "milk", MeasurementUnit: "ml", Amount: 50},
	}
	if len(items) != len(want) {
		t.Fatalf("ShoppingItems() = %+v, want %+v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}

	names, err := f.db.ShoppingRecipeNames(ctx, f.reader.ID)
	if err != nil {
		t.Fatalf("ShoppingRecipeNames() error = %v", err)
	}
	if len(names) != 2 || names[0] != "Cake" || names[1] != "Omelette" {
		t.Errorf("ShoppingRecipeNames() = %v, want [Cake Omelette]", names)
	}
}

func TestShoppingItems_EmptyCart(t *testing.T) {
	f := newRecipeFixture(t)

	items, err := f.db.ShoppingItems(context.Background(), f.reader.ID)
	if err != nil {
		t.Fatalf("ShoppingItems() error = %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("ShoppingItems() = %#v, want empty non-nil slice", items)
	}
}
