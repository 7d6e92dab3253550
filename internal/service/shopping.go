package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// ShoppingListFilename is the suggested download name of the report.
const ShoppingListFilename = "shopping_list.txt"

var shoppingListTemplate = template.Must(template.New("shopping_list").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`Shopping list for {{.Date}}:
Products:
{{range $i, $p := .Products}}{{inc $i}}. {{$p.Name}} - {{$p.Amount}} {{$p.MeasurementUnit}}
{{end}}Recipes:
{{range .Recipes}}- {{.}}
{{end}}`))

// ShoppingReport is the aggregated shopping list of one user.
type ShoppingReport struct {
	Date     string
	Products []model.ShoppingItem
	Recipes  []string
}

// ShoppingService builds the read-only shopping-list report. It never
// writes, so any number of reports can be built concurrently.
type ShoppingService struct {
	repo repository.ShoppingRepository
	now  func() time.Time
}

// NewShoppingService creates a ShoppingService. now supplies the report
// date; nil means time.Now.
func NewShoppingService(repo repository.ShoppingRepository, now func() time.Time) *ShoppingService {
	if now == nil {
		now = time.Now
	}
	return &ShoppingService{repo: repo, now: now}
}

// Report sums the ingredient lines of every recipe in the user's shopping
// list by (name, unit) and lists the distinct recipe names. An empty list
// yields a report with empty sections.
func (s *ShoppingService) Report(ctx context.Context, userID int64) (*ShoppingReport, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}

	items, err := s.repo.ShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregating shopping list: %w", err)
	}
	recipes, err := s.repo.ShoppingRecipeNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing shopping list recipes: %w", err)
	}

	products := make([]model.ShoppingItem, len(items))
	for i, it := range items {
		it.Name = capitalize(it.Name)
		products[i] = it
	}
	// Storage collation is byte order; sort case-insensitively here so
	// "egg" and "Flour" land in alphabetical order.
	sort.SliceStable(products, func(i, j int) bool {
		a, b := strings.ToLower(products[i].Name), strings.ToLower(products[j].Name)
		if a != b {
			return a < b
		}
		return products[i].MeasurementUnit < products[j].MeasurementUnit
	})
	sort.SliceStable(recipes, func(i, j int) bool {
		return strings.ToLower(recipes[i]) < strings.ToLower(recipes[j])
	})

	return &ShoppingReport{
		Date:     s.now().Format(time.DateOnly),
		Products: products,
		Recipes:  recipes,
	}, nil
}

// Text renders the report as the plain-text download.
func (s *ShoppingService) Text(ctx context.Context, userID int64) ([]byte, error) {
	report, err := s.Report(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.Render()
}

// Render formats the report:
//
//	Shopping list for 2024-05-01:
//	Products:
//	1. Egg - 2 pcs
//	Recipes:
//	- Omelette
func (r *ShoppingReport) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := shoppingListTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("rendering shopping list: %w", err)
	}
	return buf.Bytes(), nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
