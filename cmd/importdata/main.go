// Command importdata loads the ingredient and tag catalogs into the
// database.
//
// USAGE:
//
//	importdata -db data/foodgram.db -ingredients data/ingredients.csv -tags data/tags.json
//
// Ingredients come from CSV ("name,unit" rows, no header) or JSON
// ([{"name": ..., "measurement_unit": ...}]), chosen by file extension.
// Tags come from JSON ([{"name": ..., "slug": ...}]); a missing slug is
// generated from the name. Rows that already exist are skipped, so the
// command can be re-run safely.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	sqliteRepo "github.com/sakif/foodgram/internal/repository/sqlite"
	"github.com/sakif/foodgram/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "importdata:", err)
		os.Exit(1)
	}
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	// DB_PATH from .env or the environment is the default for -db, the
	// same database the server opens.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = "data/foodgram.db"
	}

	fs := flag.NewFlagSet("importdata", flag.ContinueOnError)
	fs.SetOutput(stdout)
	dbPath := fs.String("db", defaultDB, "SQLite database file")
	ingredientsPath := fs.String("ingredients", "", "ingredients file (.csv or .json)")
	tagsPath := fs.String("tags", "", "tags file (.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ingredientsPath == "" && *tagsPath == "" {
		return errors.New("nothing to import: pass -ingredients and/or -tags")
	}

	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := sqliteRepo.New(*dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	catalog := service.NewCatalogService(db, logger)

	if *ingredientsPath != "" {
		ingredients, err := readIngredients(*ingredientsPath)
		if err != nil {
			return err
		}
		res, err := catalog.ImportIngredients(ctx, ingredients)
		if err != nil {
			return fmt.Errorf("importing ingredients: %w", err)
		}
		fmt.Fprintf(stdout, "ingredients: %d created, %d skipped\n", res.Created, res.Skipped)
	}

	if *tagsPath != "" {
		tags, err := readTags(*tagsPath)
		if err != nil {
			return err
		}
		res, err := catalog.ImportTags(ctx, tags)
		if err != nil {
			return fmt.Errorf("importing tags: %w", err)
		}
		fmt.Fprintf(stdout, "tags: %d created, %d skipped\n", res.Created, res.Skipped)
	}

	return nil
}
