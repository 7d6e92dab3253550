package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/media"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository/sqlite"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeImageStore is an in-memory ImageStore. Any payload equal to
// badImage is rejected the way media.Store rejects non-images.
type fakeImageStore struct {
	mu      sync.Mutex
	next    int
	saved   map[string]string // url -> payload
	deleted []string
}

const badImage = "not-an-image"

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: make(map[string]string)}
}

func (f *fakeImageStore) SaveDataURL(kind, data string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data == badImage {
		return "", media.ErrInvalidImage
	}
	f.next++
	url := fmt.Sprintf("%s%s/img%d.png", media.URLPrefix, kind, f.next)
	f.saved[url] = data
	return url, nil
}

func (f *fakeImageStore) Delete(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, url)
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeImageStore) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.saved[url]
	return ok
}

// testEnv wires every service to one in-memory database.
type testEnv struct {
	db        *sqlite.DB
	images    *fakeImageStore
	tokens    *auth.TokenService
	passwords *auth.PasswordService

	users     *UserService
	auth      *AuthService
	follows   *FollowService
	catalog   *CatalogService
	recipes   *RecipeService
	relations *RelationService
	shopping  *ShoppingService
}

var testDate = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	images := newFakeImageStore()
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	rules := Rules{MinCookingTime: 1, MinAmount: 1, PageSize: 6}

	return &testEnv{
		db:        db,
		images:    images,
		tokens:    tokens,
		passwords: passwords,
		users:     NewUserService(db, passwords, images, rules.PageSize, logger),
		auth:      NewAuthService(db, tokens, passwords, logger),
		follows:   NewFollowService(db, db, db, rules.PageSize, logger),
		catalog:   NewCatalogService(db, logger),
		recipes:   NewRecipeService(db, db, images, rules, "https://foodgram.example", logger),
		relations: NewRelationService(db, db, logger),
		shopping:  NewShoppingService(db, func() time.Time { return testDate }),
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.Profile {
	t.Helper()
	p, err := e.users.Register(context.Background(), RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "secret-password",
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) tag(t *testing.T, name string) model.Tag {
	t.Helper()
	tag := model.Tag{Name: name, Slug: name}
	_, err := e.db.InsertTag(context.Background(), &tag)
	require.NoError(t, err)
	return tag
}

func (e *testEnv) ingredient(t *testing.T, name, unit string) model.Ingredient {
	t.Helper()
	ing := model.Ingredient{Name: name, MeasurementUnit: unit}
	_, err := e.db.InsertIngredient(context.Background(), &ing)
	require.NoError(t, err)
	return ing
}

func (e *testEnv) recipe(t *testing.T, authorID int64, name string, tags []int64, lines ...model.IngredientLine) *model.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), authorID, RecipeInput{
		Name:        name,
		Text:        "Cook it.",
		Image:       "data:image/png;base64,AAAA",
		CookingTime: 10,
		Tags:        tags,
		Ingredients: lines,
	})
	require.NoError(t, err)
	return r
}

func line(id int64, amount int) model.IngredientLine {
	return model.IngredientLine{IngredientID: id, Amount: amount}
}
