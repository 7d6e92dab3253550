// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first when present (see
// .env.example); real environment variables always win over it. Every
// setting has a default except JWT_SECRET.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration.
type Config struct {
	Port      int
	DBPath    string
	MediaDir  string
	PublicURL string // scheme://host used to build short links

	JWTSecret string
	TokenTTL  time.Duration

	MinCookingTime int
	MinAmount      int
	PageSize       int

	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of
// os.LookupEnv. Tests pass a map-backed function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	env := reader{lookup: lookup}

	cfg := Config{
		Port:               env.int("PORT", 8080),
		DBPath:             env.string("DB_PATH", "data/foodgram.db"),
		MediaDir:           env.string("MEDIA_DIR", "data/media"),
		JWTSecret:          env.string("JWT_SECRET", ""),
		TokenTTL:           env.duration("TOKEN_TTL", 24*time.Hour),
		MinCookingTime:     env.int("MIN_COOKING_TIME", 1),
		MinAmount:          env.int("MIN_AMOUNT", 1),
		PageSize:           env.int("PAGE_SIZE", 6),
		LogLevel:           env.level("LOG_LEVEL", slog.LevelInfo),
		LogFormat:          strings.ToLower(env.string("LOG_FORMAT", "text")),
		GitHubClientID:     env.string("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: env.string("GITHUB_CLIENT_SECRET", ""),
	}
	cfg.PublicURL = strings.TrimRight(env.string("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	cfg.GitHubCallbackURL = env.string("GITHUB_CALLBACK_URL", cfg.PublicURL+"/auth/github/callback")

	if len(env.errs) > 0 {
		return Config{}, errors.Join(env.errs...)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("config: JWT_SECRET must be set to at least 16 characters"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT %d out of range", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("config: TOKEN_TTL must be positive"))
	}
	if c.MinCookingTime < 1 {
		errs = append(errs, errors.New("config: MIN_COOKING_TIME must be at least 1"))
	}
	if c.MinAmount < 1 {
		errs = append(errs, errors.New("config: MIN_AMOUNT must be at least 1"))
	}
	if c.PageSize < 1 {
		errs = append(errs, errors.New("config: PAGE_SIZE must be at least 1"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// NewLogger builds the slog logger described by LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// reader collects parse errors so one bad variable does not hide the next.
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) string(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q is not a duration (e.g. 24h)", key, v))
		return def
	}
	return d
}

func (r *reader) level(key string, def slog.Level) slog.Level {
	v := r.string(key, "")
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q is not a log level", key, v))
		return def
	}
	return lvl
}
