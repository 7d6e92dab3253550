package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/service"
)

// RecipeHandler serves recipes, the per-user favorites and shopping-cart
// lists, the shopping-list download and short links.
type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingService
	logger    *slog.Logger
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingService,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		shopping:  shopping,
		logger:    logger,
	}
}

type shortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// HandleList returns one page of recipes, newest first.
//
// HTTP: GET /api/recipes?page=&limit=&author=&tags=a&tags=b&is_favorited=1&is_in_shopping_cart=1
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	author, err := queryInt(r, "author")
	if err != nil {
		writeError(w, err)
		return
	}

	q := recipeQuery(r)
	q.AuthorID = int64(author)
	q.PageRequest = req

	viewerID, _ := auth.UserIDFromContext(r.Context())
	page, err := h.recipes.List(r.Context(), viewerID, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaginated(r, page))
}

// recipeQuery reads the tag and list filters. Tags may repeat
// and match any.
func recipeQuery(r *http.Request) service.RecipeQuery {
	var tags []string
	for _, slug := range r.URL.Query()["tags"] {
		if slug != "" {
			tags = append(tags, slug)
		}
	}
	return service.RecipeQuery{
		TagSlugs:         tags,
		IsFavorited:      queryBool(r, "is_favorited"),
		IsInShoppingCart: queryBool(r, "is_in_shopping_cart"),
	}
}

// HTTP: GET /api/recipes/{id}
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	recipe, err := h.recipes.Get(r.Context(), id, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleCreate creates a recipe authored by the caller.
//
// HTTP: POST /api/recipes
// Auth: Required
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.RecipeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	recipe, err := h.recipes.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// HandleUpdate applies a partial update. Omitted fields are kept; a given
// tags or ingredients array replaces the whole set.
//
// HTTP: PATCH /api/recipes/{id}
// Auth: Required (author only)
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch service.RecipePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	recipe, err := h.recipes.Update(r.Context(), userID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HTTP: DELETE /api/recipes/{id}
// Auth: Required (author only)
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.recipes.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /api/recipes/{id}/get-link
func (h *RecipeHandler) HandleGetLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	link, err := h.recipes.ShortLink(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shortLinkResponse{ShortLink: link})
}

// HandleAddRelation returns the POST handler for one of the recipe lists.
//
// HTTP: POST /api/recipes/{id}/favorite, POST /api/recipes/{id}/shopping_cart
// Auth: Required
func (h *RecipeHandler) HandleAddRelation(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		userID, _ := auth.UserIDFromContext(r.Context())

		summary, err := h.relations.Add(r.Context(), kind, userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, summary)
	}
}

// HandleRemoveRelation returns the DELETE handler for one of the recipe
// lists.
func (h *RecipeHandler) HandleRemoveRelation(kind model.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		userID, _ := auth.UserIDFromContext(r.Context())

		if err := h.relations.Remove(r.Context(), kind, userID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleDownloadShoppingCart sends the caller's aggregated shopping list as
// a plain-text attachment.
//
// HTTP: GET /api/recipes/download_shopping_cart
// Auth: Required
func (h *RecipeHandler) HandleDownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	text, err := h.shopping.Text(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(text); err != nil {
		h.logger.Error("failed to write shopping list", slog.String("error", err.Error()))
	}
}

// HandleShortLink redirects a short link to the recipe page.
//
// HTTP: GET /s/{id}
func (h *RecipeHandler) HandleShortLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	target, err := h.recipes.ResolveShortLink(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
