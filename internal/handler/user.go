package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/service"
)

// UserHandler serves accounts, profiles and subscriptions.
//
// DEPENDENCY CHAIN:
//   - users   *service.UserService   → registration, profiles, avatar, password
//   - follows *service.FollowService → subscribe/unsubscribe, subscription list
type UserHandler struct {
	users   *service.UserService
	follows *service.FollowService
	logger  *slog.Logger
}

func NewUserHandler(users *service.UserService, follows *service.FollowService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, follows: follows, logger: logger}
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// HTTP: GET /api/users?page=&limit=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	page, err := h.users.List(r.Context(), viewerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaginated(r, page))
}

// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	viewerID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.users.Profile(r.Context(), id, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleMe returns the caller's own profile.
//
// HTTP: GET /api/users/me
// Auth: Required
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	profile, err := h.users.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HTTP: PUT /api/users/me/avatar {"avatar": "data:image/png;base64,..."}
func (h *UserHandler) HandleSetAvatar(w http.ResponseWriter, r *http.Request) {
	var in avatarRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	url, err := h.users.SetAvatar(r.Context(), userID, in.Avatar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{Avatar: url})
}

// HTTP: DELETE /api/users/me/avatar
func (h *UserHandler) HandleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.users.DeleteAvatar(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: POST /api/users/set_password {"current_password", "new_password"}
func (h *UserHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	var in service.SetPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.SetPassword(r.Context(), userID, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteMe deletes the caller's account and everything it owns.
//
// HTTP: DELETE /api/users/me {"current_password"}
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	var in deleteAccountRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.DeleteAccount(r.Context(), userID, in.CurrentPassword); err != nil {
		writeError(w, err)
		return
	}
	clearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubscriptions lists the authors the caller follows.
//
// HTTP: GET /api/users/subscriptions?page=&limit=&recipes_limit=
func (h *UserHandler) HandleSubscriptions(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recipesLimit, err := queryInt(r, "recipes_limit")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	page, err := h.follows.Following(r.Context(), userID, recipesLimit, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaginated(r, page))
}

// HTTP: POST /api/users/{id}/subscribe?recipes_limit=
func (h *UserHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	recipesLimit, err := queryInt(r, "recipes_limit")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	author, err := h.follows.Follow(r.Context(), userID, authorID, recipesLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, author)
}

// HTTP: DELETE /api/users/{id}/subscribe
func (h *UserHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.follows.Unfollow(r.Context(), userID, authorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
