package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

const testSecret = "0123456789abcdef0123"

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/foodgram.db", cfg.DBPath)
	assert.Equal(t, "data/media", cfg.MediaDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 1, cfg.MinCookingTime)
	assert.Equal(t, 1, cfg.MinAmount)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHubCallbackURL)
	assert.False(t, cfg.GitHubEnabled())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"JWT_SECRET":           testSecret,
		"PORT":                 "9000",
		"PUBLIC_URL":           "https://food.example.com/",
		"TOKEN_TTL":            "90m",
		"MIN_COOKING_TIME":     "5",
		"PAGE_SIZE":            "20",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "JSON",
		"GITHUB_CLIENT_ID":     "id",
		"GITHUB_CLIENT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://food.example.com", cfg.PublicURL)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.MinCookingTime)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "https://food.example.com/auth/github/callback", cfg.GitHubCallbackURL)
	assert.True(t, cfg.GitHubEnabled())
}

func TestFromLookup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{name: "missing secret", env: map[string]string{}, wantMsg: "JWT_SECRET"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, wantMsg: "JWT_SECRET"},
		{name: "bad port", env: map[string]string{"JWT_SECRET": testSecret, "PORT": "eighty"}, wantMsg: "PORT"},
		{name: "bad ttl", env: map[string]string{"JWT_SECRET": testSecret, "TOKEN_TTL": "forever"}, wantMsg: "TOKEN_TTL"},
		{name: "zero amount", env: map[string]string{"JWT_SECRET": testSecret, "MIN_AMOUNT": "0"}, wantMsg: "MIN_AMOUNT"},
		{name: "bad level", env: map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "loud"}, wantMsg: "LOG_LEVEL"},
		{name: "bad format", env: map[string]string{"JWT_SECRET": testSecret, "LOG_FORMAT": "xml"}, wantMsg: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: slog.LevelInfo, LogFormat: "json"}

	cfg.NewLogger(&buf).Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.LogFormat = "text"
	logger := cfg.NewLogger(&buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
