package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
)

func TestInsertTag_SkipsExistingSlug(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.Tag{Name: "Breakfast", Slug: "breakfast"}
	created, err := db.InsertTag(ctx, first)
	if err != nil {
		t.Fatalf("InsertTag() error = %v", err)
	}
	if !created || first.ID == 0 {
		t.Fatalf("InsertTag() = %v, ID %d; want created with an id", created, first.ID)
	}

	dup := &model.Tag{Name: "Morning", Slug: "breakfast"}
	created, err = db.InsertTag(ctx, dup)
	if err != nil {
		t.Fatalf("InsertTag() duplicate error = %v", err)
	}
	if created {
		t.Error("InsertTag() duplicate reported created")
	}
	if dup.ID != first.ID {
		t.Errorf("duplicate ID = %d, want existing %d", dup.ID, first.ID)
	}

	tags, err := db.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "Breakfast" {
		t.Errorf("ListTags() = %+v, want the original tag only", tags)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetTag(context.Background(), 5)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetTag() error = %v, want ErrNotFound", err)
	}
}

func TestInsertIngredient_SameNameDifferentUnit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	grams := createTestIngredient(t, db, "sugar", "g")
	spoons := &model.Ingredient{Name: "sugar", MeasurementUnit: "tbsp"}
	created, err := db.InsertIngredient(ctx, spoons)
	if err != nil {
		t.Fatalf("InsertIngredient() error = %v", err)
	}
	if !created || spoons.ID == grams.ID {
		t.Errorf("InsertIngredient() created=%v id=%d, want a new row", created, spoons.ID)
	}

	again := &model.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	created, err = db.InsertIngredient(ctx, again)
	if err != nil {
		t.Fatalf("InsertIngredient() duplicate error = %v", err)
	}
	if created || again.ID != grams.ID {
		t.Errorf("InsertIngredient() duplicate created=%v id=%d, want existing %d", created, again.ID, grams.ID)
	}
}

func TestListIngredients_PrefixFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestIngredient(t, db, "Salt", "g")
	createTestIngredient(t, db, "salmon", "g")
	createTestIngredient(t, db, "sugar", "g")
	createTestIngredient(t, db, "50%_cream", "ml")

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: []string{"50%_cream", "Salt", "salmon", "sugar"}},
		{prefix: "sal", want: []string{"Salt", "salmon"}},
		{prefix: "SU", want: []string{"sugar"}},
		{prefix: "50%", want: []string{"50%_cream"}},
		{prefix: "%", want: []string{}},
		{prefix: "pepper", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := db.ListIngredients(ctx, tt.prefix)
			if err != nil {
				t.Fatalf("ListIngredients(%q) error = %v", tt.prefix, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListIngredients(%q) = %d rows, want %d", tt.prefix, len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("row %d = %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestMissingIDs_PreservesInputOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tag := createTestTag(t, db, "lunch")

	missing, err := db.MissingTagIDs(ctx, []int64{42, tag.ID, 7})
	if err != nil {
		t.Fatalf("MissingTagIDs() error = %v", err)
	}
	if len(missing) != 2 || missing[0] != 42 || missing[1] != 7 {
		t.Errorf("MissingTagIDs() = %v, want [42 7]", missing)
	}

	none, err := db.MissingIngredientIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("MissingIngredientIDs(nil) = %v, %v; want empty", none, err)
	}
}
