package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/models"
	"github.com/wawanher487/e-commerceApps/internal/service"
)

// gwCall records one backend call made through the fake gateway.
type gwCall struct {
	method string
	path   string
	body   any
}

// fakeGateway implements Gateway with scripted responses keyed by
// "METHOD path".
type fakeGateway struct {
	mu        sync.Mutex
	calls     []gwCall
	responses map[string]json.RawMessage
	errs      map[string]error
	binaries  map[string][]byte
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		responses: make(map[string]json.RawMessage),
		errs:      make(map[string]error),
		binaries:  make(map[string][]byte),
	}
}

func (f *fakeGateway) respond(method, path, body string) {
	f.responses[method+" "+path] = json.RawMessage(body)
}

func (f *fakeGateway) failWith(method, path string, err error) {
	f.errs[method+" "+path] = err
}

func (f *fakeGateway) called() []gwCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gwCall(nil), f.calls...)
}

func (f *fakeGateway) do(method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, gwCall{method: method, path: path, body: body})
	f.mu.Unlock()

	key := method + " " + path
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeGateway) Exchange(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return f.do("POST", path, body)
}

func (f *fakeGateway) Get(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error) {
	return f.do("GET", path, nil)
}

func (f *fakeGateway) Post(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return f.do("POST", path, body)
}

func (f *fakeGateway) Put(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return f.do("PUT", path, body)
}

func (f *fakeGateway) Patch(ctx context.Context, sess *models.Session, path string, body any) (json.RawMessage, error) {
	return f.do("PATCH", path, body)
}

func (f *fakeGateway) Delete(ctx context.Context, sess *models.Session, path string) (json.RawMessage, error) {
	return f.do("DELETE", path, nil)
}

func (f *fakeGateway) SendForm(ctx context.Context, sess *models.Session, method, path, contentType string, body io.Reader) (json.RawMessage, error) {
	data, _ := io.ReadAll(body)
	return f.do(method, path, string(data))
}

// GetBinary lets the fake double as the asset fetcher.
func (f *fakeGateway) GetBinary(ctx context.Context, sess *models.Session, path string) ([]byte, string, error) {
	if b, ok := f.binaries[path]; ok {
		return b, "image/jpeg", nil
	}
	return nil, "", errors.New("not found")
}

// fakeSessionStore implements Sessions in memory.
type fakeSessionStore struct {
	mu       sync.Mutex
	n        int
	sessions map[string]models.Session
	setErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (f *fakeSessionStore) Set(ctx context.Context, credential, refreshCredential string, profile models.Profile) (models.Session, error) {
	if f.setErr != nil {
		return models.Session{}, f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	sess := models.Session{
		Token:             fmt.Sprintf("tok-%d", f.n),
		Credential:        credential,
		RefreshCredential: refreshCredential,
		Profile:           profile,
	}
	f.sessions[sess.Token] = sess
	return sess, nil
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, ok := f.sessions[token]; ok {
		return &sess, nil
	}
	return nil, service.ErrNoSession
}

func (f *fakeSessionStore) Clear(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// put installs a session directly and returns its token.
func (f *fakeSessionStore) put(sess models.Session) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.Token] = sess
	return sess.Token
}

func testAssets(gw *fakeGateway) *assets.Manager {
	return assets.NewManager(gw, zap.NewNop())
}

func userSession() models.Session {
	return models.Session{
		Token:      "tok-user",
		Credential: "cred-user",
		Profile:    models.Profile{ID: "u1", Name: "Alice", Email: "a@b.co", Role: models.RoleUser},
	}
}

func adminSession() models.Session {
	return models.Session{
		Token:      "tok-admin",
		Credential: "cred-admin",
		Profile:    models.Profile{ID: "a1", Name: "Root", Email: "root@b.co", Role: models.RoleAdmin},
	}
}
