// Package gateway implements the authenticated REST client for the external
// storefront backend. Every request carries the session's bearer credential;
// an authorization failure from the backend destroys the session before the
// caller sees anything.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

// ErrSessionExpired is returned when the backend answers 401 or 403. By the
// time the caller sees it the session has already been cleared; the only
// correct reaction is a redirect to /login.
var ErrSessionExpired = errors.New("session expired")

// APIError carries a non-2xx backend response. Message is the backend's own
// message field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// SessionClearer destroys a session by token. Implemented by the session
// service.
type SessionClearer interface {
	Clear(ctx context.Context, token string) error
}

// Client is the single HTTP client for the backend. All storefront and
// console traffic flows through it.
type Client struct {
	base     string
	http     *http.Client
	sessions SessionClearer
	log      *zap.Logger
}

// New creates a Client for the given backend base URL.
func New(base string, sessions SessionClearer, log *zap.Logger) *Client {
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		log:      log,
	}
}

// Exchange issues an unauthenticated POST outside the interception rules.
// The login and register flows go through here: a 401 from /auth/login means
// wrong credentials, not an expired session, and must reach the caller as an
// APIError with the backend's message.
func (c *Client) Exchange(ctx context.Context, path string, body any) (json.RawMessage, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: messageOf(data)}
	}
	return data, nil
}

// Get issues an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error) {
	return c.doJSON(ctx, sess, http.MethodGet, path, nil)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return c.doJSON(ctx, sess, http.MethodPost, path, body)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return c.doJSON(ctx, sess, http.MethodPut, path, body)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return c.doJSON(ctx, sess, http.MethodPatch, path, body)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error) {
	return c.doJSON(ctx, sess, http.MethodDelete, path, nil)
}

// SendForm issues an authenticated request with a caller-built body, used to
// pass multipart uploads through to the backend untouched. contentType must
// be the full multipart content type including the boundary.
func (c *Client) SendForm(ctx context.Context, sess *models.Session, method, path, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.send(ctx, sess, req)
}

// GetBinary fetches a binary resource (an image) with the bearer credential
// and returns the payload and its content type. Authorization failures are
// reported as plain errors here, not intercepted: a broken image falls back
// to the placeholder without ending the session.
func (c *Client) GetBinary(ctx context.Context, sess *models.Session, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	authorize(req, sess)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch binary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch binary: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read binary: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) doJSON(ctx context.Context, sess *models.Session, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, sess, req)
}

// send executes the request with the bearer credential attached and applies
// the response interception rules: 401/403 clears the session and
// short-circuits, other non-2xx surfaces the backend's message.
func (c *Client) send(ctx context.Context, sess *models.Session, req *http.Request) (json.RawMessage, error) {
	authorize(req, sess)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if sess != nil {
			if err := c.sessions.Clear(ctx, sess.Token); err != nil {
				c.log.Error("failed to clear session after auth failure",
					zap.Int("status", resp.StatusCode), zap.Error(err))
			}
		}
		c.log.Info("backend rejected credential",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return nil, ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: messageOf(data)}
	}

	return data, nil
}

// authorize attaches the bearer credential if the session carries one.
func authorize(req *http.Request, sess *models.Session) {
	if sess != nil && sess.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Credential)
	}
}

// messageOf extracts the backend's message field from an error body, falling
// back to a generic text.
func messageOf(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return "request failed"
}
