package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
)

// AdminUserHandler serves the console's user management table.
type AdminUserHandler struct {
	Gateway       Gateway
	Assets        *assets.Manager
	UserImagePath string
	Log           *zap.Logger
}

// usersResponse is the backend's user list shape.
type usersResponse struct {
	Users []models.User `json:"users"`
}

// userForm is the JSON payload for creating or updating an account.
type userForm struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"omitempty,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=user admin"`
}

// List handles GET /admin/users: every account with its avatar fetched
// through the asset fetcher, one placeholder per missing or failed image.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/user")
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp usersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed users response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	page := h.Assets.Page(sess.Token, "admin/users")
	for _, u := range resp.Users {
		page.Fetch(r.Context(), sess, u.ID, h.UserImagePath, u.ProfileImage)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":     resp.Users,
		"imageUrls": page.URLs(),
	})
}

// Create handles POST /admin/users.
func (h *AdminUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	var req userForm
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Post(r.Context(), sess, "/admin/user", req); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "user created"})
}

// Update handles PATCH /admin/users/{id}.
func (h *AdminUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req userForm
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Patch(r.Context(), sess, "/admin/user/"+id, req); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "user updated"})
}

// Delete handles DELETE /admin/users/{id}. Requires confirm=true.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !confirmed(w, r) {
		return
	}

	if _, err := h.Gateway.Delete(r.Context(), sess, "/admin/user/"+id); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "user deleted"})
}
