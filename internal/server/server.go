// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB, media.Store, auth.TokenService, auth.PasswordService
//	    → services (user, auth, follow, catalog, recipe, relation, shopping)
//	      → handlers (user, auth, catalog, recipe)
//
// All dependencies are assembled here and nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/config"
	"github.com/sakif/foodgram/internal/handler"
	"github.com/sakif/foodgram/internal/media"
	"github.com/sakif/foodgram/internal/middleware"
	"github.com/sakif/foodgram/internal/model"
	sqliteRepo "github.com/sakif/foodgram/internal/repository/sqlite"
	"github.com/sakif/foodgram/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Close releases it; Start calls
// Close on the way out.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
	now    func() time.Time
}

// Option customises a Server before its routes are built.
type Option func(*Server)

// WithClock replaces time.Now as the source of the shopping-list date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New opens the database and media directory and wires every layer.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (satisfied by the one *sqlite.DB)
// - Handlers get services, never the repository or DB
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	// === CREATE DATABASE ===
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /media/*                             uploaded images
//	GET    /s/{id}                              short link → /recipes/{id}/
//	GET    /auth/github/login, /auth/github/callback (only when configured)
//
//	/api (token optional: viewer flags are filled in when present)
//	GET    /tags, /tags/{id}, /ingredients, /ingredients/{id}
//	POST   /users                               register
//	POST   /auth/token/login
//	GET    /users, /users/{id}
//	GET    /recipes, /recipes/{id}, /recipes/{id}/get-link
//
//	/api (token required)
//	POST   /auth/token/logout
//	GET    /users/me             DELETE /users/me
//	PUT    /users/me/avatar      DELETE /users/me/avatar
//	POST   /users/set_password
//	GET    /users/subscriptions
//	POST   /users/{id}/subscribe DELETE /users/{id}/subscribe
//	POST   /recipes              PATCH|DELETE /recipes/{id}
//	POST   /recipes/{id}/favorite       DELETE /recipes/{id}/favorite
//	POST   /recipes/{id}/shopping_cart  DELETE /recipes/{id}/shopping_cart
//	GET    /recipes/download_shopping_cart
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts the client IP from proxy headers
// 3. Recoverer: turns panics into 500 instead of crashing
// 4. Logger: logs each request with timing info
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Storage and shared services ===
	images, err := media.NewStore(s.config.MediaDir)
	if err != nil {
		return fmt.Errorf("creating media store: %w", err)
	}
	passwords := auth.NewPasswordService()
	rules := service.Rules{
		MinCookingTime: s.config.MinCookingTime,
		MinAmount:      s.config.MinAmount,
		PageSize:       s.config.PageSize,
	}

	userService := service.NewUserService(s.db, passwords, images, s.config.PageSize, s.logger)
	authService := service.NewAuthService(s.db, s.tokens, passwords, s.logger)
	followService := service.NewFollowService(s.db, s.db, s.db, s.config.PageSize, s.logger)
	catalogService := service.NewCatalogService(s.db, s.logger)
	recipeService := service.NewRecipeService(s.db, s.db, images, rules, s.config.PublicURL, s.logger)
	relationService := service.NewRelationService(s.db, s.db, s.logger)
	shoppingService := service.NewShoppingService(s.db, s.now)

	var github handler.GitHubAuthenticator
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	userHandler := handler.NewUserHandler(userService, followService, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, s.config.TokenTTL, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, relationService, shoppingService, s.logger)

	// === Media files ===
	// http.StripPrefix removes "/media/" so the file server resolves paths
	// relative to MediaDir.
	fileServer := http.FileServer(http.Dir(s.config.MediaDir))
	s.router.Handle(media.URLPrefix+"*", http.StripPrefix(media.URLPrefix, fileServer))

	s.router.Get("/s/{id}", recipeHandler.HandleShortLink)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// === API ===
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(s.tokens))

		r.Get("/tags", catalogHandler.HandleListTags)
		r.Get("/tags/{id}", catalogHandler.HandleGetTag)
		r.Get("/ingredients", catalogHandler.HandleListIngredients)
		r.Get("/ingredients/{id}", catalogHandler.HandleGetIngredient)

		r.Post("/auth/token/login", authHandler.HandleLogin)
		r.Post("/users", userHandler.HandleRegister)
		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{id}", userHandler.HandleGet)

		r.Get("/recipes", recipeHandler.HandleList)
		r.Get("/recipes/{id}", recipeHandler.HandleGet)
		r.Get("/recipes/{id}/get-link", recipeHandler.HandleGetLink)

		// Protected routes: RequireAuth answers 401 before the handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Post("/auth/token/logout", authHandler.HandleLogout)

			r.Get("/users/me", userHandler.HandleMe)
			r.Delete("/users/me", userHandler.HandleDeleteMe)
			r.Put("/users/me/avatar", userHandler.HandleSetAvatar)
			r.Delete("/users/me/avatar", userHandler.HandleDeleteAvatar)
			r.Post("/users/set_password", userHandler.HandleSetPassword)
			r.Get("/users/subscriptions", userHandler.HandleSubscriptions)
			r.Post("/users/{id}/subscribe", userHandler.HandleSubscribe)
			r.Delete("/users/{id}/subscribe", userHandler.HandleUnsubscribe)

			r.Post("/recipes", recipeHandler.HandleCreate)
			r.Patch("/recipes/{id}", recipeHandler.HandleUpdate)
			r.Delete("/recipes/{id}", recipeHandler.HandleDelete)
			r.Get("/recipes/download_shopping_cart", recipeHandler.HandleDownloadShoppingCart)
			r.Post("/recipes/{id}/favorite", recipeHandler.HandleAddRelation(model.RelationFavorite))
			r.Delete("/recipes/{id}/favorite", recipeHandler.HandleRemoveRelation(model.RelationFavorite))
			r.Post("/recipes/{id}/shopping_cart", recipeHandler.HandleAddRelation(model.RelationShoppingCart))
			r.Delete("/recipes/{id}/shopping_cart", recipeHandler.HandleRemoveRelation(model.RelationShoppingCart))
		})
	})

	return nil
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server and blocks until it stops.
//
// GRACEFUL SHUTDOWN:
// On SIGINT/SIGTERM the server stops accepting connections and gives
// in-flight requests up to 30 seconds to finish before returning.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("public_url", s.config.PublicURL),
			slog.String("database", s.config.DBPath),
			slog.String("media", s.config.MediaDir),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
