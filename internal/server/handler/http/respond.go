// Package http provides the storefront's view controllers: HTTP handlers
// that orchestrate the API gateway and the asset fetcher and answer with
// JSON view models or navigation redirects.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/gateway"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
	"github.com/wawanher487/e-commerceApps/internal/service"
)

// validate checks inbound payloads before anything is forwarded to the
// backend.
var validate = validator.New()

// Gateway is the backend client surface the view controllers use.
// Implemented by the gateway client.
type Gateway interface {
	Exchange(ctx context.Context, path string, body any) (json.RawMessage, error)
	Get(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error)
	Post(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error)
	Patch(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error)
	SendForm(ctx context.Context, sess *models.Session, method, path, contentType string, body io.Reader) (json.RawMessage, error)
}

// Sessions is the session lifecycle surface used by the handlers.
// Implemented by the session service.
type Sessions interface {
	Set(ctx context.Context, credential, refreshCredential string, profile models.Profile) (models.Session, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Clear(ctx context.Context, token string) error
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// message is the body shape for error and confirmation responses.
type message struct {
	Message string `json:"message"`
}

// fail maps an error from the gateway onto the response per the error
// taxonomy: authorization failures become a hard redirect to /login (the
// session is already gone; the view never handles the body), backend
// validation failures surface the backend's message verbatim, anything else
// gets a generic message.
func fail(w http.ResponseWriter, r *http.Request, blobs *assets.Manager, sess *models.Session, log *zap.Logger, err error) {
	if errors.Is(err, gateway.ErrSessionExpired) || errors.Is(err, service.ErrNoSession) {
		if blobs != nil && sess != nil {
			blobs.ReleaseSession(sess.Token)
		}
		clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, message{Message: apiErr.Message})
		return
	}

	log.Error("backend call failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
}

// decodeBody decodes and validates a JSON request payload. A false return
// means the response has been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid request"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid request: " + err.Error()})
		return false
	}
	return true
}

// confirmed reports whether the request carries the confirm=true field that
// destructive operations require. Nothing is forwarded without it.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.FormValue("confirm") == "true" {
		return true
	}
	writeJSON(w, http.StatusBadRequest, message{Message: "confirmation required"})
	return false
}

// setSessionCookie points the browser at its session row.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
