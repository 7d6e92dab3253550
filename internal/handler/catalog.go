package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/foodgram/internal/service"
)

// CatalogHandler serves the read-only tag and ingredient endpoints. Neither
// list is paginated.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HandleListTags returns every tag.
//
// HTTP: GET /api/tags
func (h *CatalogHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.Tags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HTTP: GET /api/tags/{id}
func (h *CatalogHandler) HandleGetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tag, err := h.catalog.Tag(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HandleListIngredients returns ingredients, optionally filtered by a name
// prefix.
//
// HTTP: GET /api/ingredients?name=sug
func (h *CatalogHandler) HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// HTTP: GET /api/ingredients/{id}
func (h *CatalogHandler) HandleGetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ingredient, err := h.catalog.Ingredient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}
