package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/auth"
)

// =========================================================================
// Login / Logout
// =========================================================================

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	p := env.register(t, "alice")

	result, err := env.auth.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, result.User.ID)
	require.NotEmpty(t, result.Token)

	userID, err := env.auth.UserIDFromToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, userID)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.auth.Login(context.Background(), LoginInput{
		Email:    "ALICE@example.com",
		Password: "secret-password",
	})
	assert.NoError(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	tests := []struct {
		name string
		in   LoginInput
	}{
		{"wrong password", LoginInput{Email: "alice@example.com", Password: "wrong-password"}},
		{"unknown email", LoginInput{Email: "bob@example.com", Password: "secret-password"}},
		{"missing password", LoginInput{Email: "alice@example.com"}},
		{"malformed email", LoginInput{Email: "alice", Password: "secret-password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.auth.Login(context.Background(), tt.in)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	result, err := env.auth.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(result.Token))

	_, err = env.auth.UserIDFromToken(result.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestLogout_InvalidToken(t *testing.T) {
	env := newTestEnv(t)
	err := env.auth.Logout("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// =========================================================================
// LoginOrRegisterGitHub
// =========================================================================

func TestLoginOrRegisterGitHub_NewUser(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.auth.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID:    42,
		Login: "octocat",
		Name:  "Mona",
		Email: "octocat@github.com",
	})
	require.NoError(t, err)

	require.NotNil(t, result.User)
	assert.NotZero(t, result.User.ID)
	assert.Equal(t, "octocat", result.User.Username)
	assert.Equal(t, "Mona", result.User.FirstName)
	assert.Empty(t, result.User.PasswordHash, "GitHub accounts have no password")
	assert.NotEmpty(t, result.Token)
}

func TestLoginOrRegisterGitHub_ExistingUserKeepsID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 99, Login: "octo", Name: "Old"})
	require.NoError(t, err)

	second, err := env.auth.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 99, Login: "octo-renamed", Name: "New"})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "octo", second.User.Username, "username is fixed at sign-up")
	assert.Equal(t, "New", second.User.FirstName)
}

func TestLoginOrRegisterGitHub_NoEmailUsesNoreplyAddress(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.auth.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 7, Login: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, "7+ghost@users.noreply.github.com", result.User.Email)
}

func TestLoginOrRegisterGitHub_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "octocat")

	result, err := env.auth.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID:    42,
		Login: "octocat",
		Email: "mona@github.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "octocat_42", result.User.Username)
}

func TestLoginOrRegisterGitHub_NilUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.LoginOrRegisterGitHub(context.Background(), nil)
	assert.Error(t, err)
}
