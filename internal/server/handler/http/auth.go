package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
)

// AuthHandler handles login, registration, and logout.
type AuthHandler struct {
	Gateway  Gateway
	Sessions Sessions
	Assets   *assets.Manager
	Log      *zap.Logger
}

// loginRequest is the JSON payload for POST /login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// registerRequest is the JSON payload for POST /register.
type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// loginResponse is the backend's answer to /auth/login. Older backend
// variants send "token" instead of "accessToken".
type loginResponse struct {
	AccessToken  string         `json:"accessToken"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
	User         models.Profile `json:"user"`
}

// LoginPage handles GET /login. A visitor who already holds a valid session
// is sent straight to their dashboard.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := middleware.ResolveSession(r, h.Sessions); err == nil && sess != nil && sess.Profile.Role.Valid() {
		http.Redirect(w, r, sess.Profile.Role.DashboardPath(), http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "login"})
}

// Login handles POST /login. On success the backend's credential and user
// profile become a stored session, the browser gets the session cookie, and
// navigation lands on the role's dashboard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	data, err := h.Gateway.Exchange(r.Context(), "/auth/login", map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		fail(w, r, h.Assets, nil, h.Log, err)
		return
	}

	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed login response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	credential := resp.AccessToken
	if credential == "" {
		credential = resp.Token
	}
	if credential == "" || !resp.User.Role.Valid() {
		h.Log.Error("login response missing credential or role",
			zap.String("role", string(resp.User.Role)))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	sess, err := h.Sessions.Set(r.Context(), credential, resp.RefreshToken, resp.User)
	if err != nil {
		h.Log.Error("failed to store session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Message: "something went wrong, please try again"})
		return
	}

	setSessionCookie(w, sess.Token)
	http.Redirect(w, r, sess.Profile.Role.DashboardPath(), http.StatusSeeOther)
}

// RegisterPage handles GET /register, with the same already-authenticated
// redirect as the login page.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := middleware.ResolveSession(r, h.Sessions); err == nil && sess != nil && sess.Profile.Role.Valid() {
		http.Redirect(w, r, sess.Profile.Role.DashboardPath(), http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "register"})
}

// Register handles POST /register, forwarding to the backend and sending the
// new account to the login page. Backend rejections (duplicate email) pass
// through verbatim.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	_, err := h.Gateway.Exchange(r.Context(), "/auth/register", map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		fail(w, r, h.Assets, nil, h.Log, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles POST /logout: destroys the session row, frees the
// session's image blobs, drops the cookie, and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.Sessions.Clear(r.Context(), cookie.Value); err != nil {
			h.Log.Error("failed to clear session on logout", zap.Error(err))
		}
		h.Assets.ReleaseSession(cookie.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
