package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/foodgram/internal/model"
)

func readIngredients(path string) ([]model.Ingredient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ingredients: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return parseIngredientsCSV(f)
	case ".json":
		var ingredients []model.Ingredient
		if err := json.NewDecoder(f).Decode(&ingredients); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return ingredients, nil
	default:
		return nil, fmt.Errorf("unsupported ingredients format %q (want .csv or .json)", ext)
	}
}

// parseIngredientsCSV reads "name,unit" records. Blank lines are skipped
// by encoding/csv itself.
func parseIngredientsCSV(r io.Reader) ([]model.Ingredient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var ingredients []model.Ingredient
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ingredients, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading ingredients csv: %w", err)
		}
		ingredients = append(ingredients, model.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}
}

func readTags(path string) ([]model.Tag, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	var tags []model.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return tags, nil
}
