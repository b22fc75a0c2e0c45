package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
)

// ProfileHandler serves the account page for both roles.
type ProfileHandler struct {
	Gateway Gateway
	Assets  *assets.Manager
	// UserImagePath is the backend prefix for avatar binaries.
	UserImagePath string
	Log           *zap.Logger
}

// userResponse is the backend's single user shape.
type userResponse struct {
	User models.User `json:"user"`
}

// profileUpdateRequest is the JSON payload for a profile edit.
type profileUpdateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// passwordUpdateRequest is the JSON payload for a password change.
type passwordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Show handles GET /{role}/profile: a fresh fetch of the account plus its
// avatar through the asset fetcher.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/user/"+sess.Profile.ID)
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp userResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed user response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	page := h.Assets.Page(sess.Token, "profile")
	page.Fetch(r.Context(), sess, resp.User.ID, h.UserImagePath, resp.User.ProfileImage)

	writeJSON(w, http.StatusOK, map[string]any{
		"user":     resp.User,
		"imageUrl": page.URL(resp.User.ID),
	})
}

// Update handles PATCH /{role}/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	var req profileUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Patch(r.Context(), sess, "/user/profile", map[string]string{
		"name":  req.Name,
		"email": req.Email,
	}); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "profile updated"})
}

// UpdatePassword handles PATCH /{role}/profile/password.
func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	var req passwordUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Patch(r.Context(), sess, "/user/password", map[string]string{
		"currentPassword": req.CurrentPassword,
		"newPassword":     req.NewPassword,
	}); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "password updated"})
}
