package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/foodgram/internal/apperror"
)

func TestFollowService_Follow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	tag := env.tag(t, "dinner")
	egg := env.ingredient(t, "egg", "pcs")
	for _, name := range []string{"One", "Two", "Three"} {
		env.recipe(t, alice.ID, name, []int64{tag.ID}, line(egg.ID, 1))
	}

	detail, err := env.follows.Follow(ctx, bob.ID, alice.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, alice.ID, detail.ID)
	assert.True(t, detail.IsSubscribed)
	assert.Equal(t, 3, detail.RecipesCount)
	require.Len(t, detail.Recipes, 2, "recipes_limit caps the embedded list")
	assert.Equal(t, "Three", detail.Recipes[0].Name, "newest first")
}

func TestFollowService_Follow_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	_, err := env.follows.Follow(ctx, alice.ID, alice.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation, "self follow")

	_, err = env.follows.Follow(ctx, 0, alice.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = env.follows.Follow(ctx, bob.ID, 999, 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.follows.Follow(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, bob.ID, alice.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrConflict, "second follow")
}

func TestFollowService_Unfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	err := env.follows.Unfollow(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "not following yet")

	_, err = env.follows.Follow(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	require.NoError(t, env.follows.Unfollow(ctx, bob.ID, alice.ID))

	p, err := env.users.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	err = env.follows.Unfollow(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFollowService_Following(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.register(t, "reader")
	authors := []string{"alice", "bob", "carol"}
	for _, name := range authors {
		a := env.register(t, name)
		_, err := env.follows.Follow(ctx, reader.ID, a.ID, 0)
		require.NoError(t, err)
	}

	page, err := env.follows.Following(ctx, reader.ID, 0, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	require.Len(t, page.Items, 2)
	for _, a := range page.Items {
		assert.True(t, a.IsSubscribed)
		assert.NotNil(t, a.Recipes)
	}

	_, err = env.follows.Following(ctx, 0, 0, PageRequest{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
