// Package assets fetches protected image binaries with the bearer
// credential and serves them back under local blob URLs, falling back to a
// static placeholder when a fetch fails. Blobs are owned by page sets and
// must be released when the page is reloaded or the session ends, otherwise
// every image view leaks memory.
package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

const (
	// BlobPathPrefix is where cached image blobs are served from.
	BlobPathPrefix = "/assets/blob/"
	// PlaceholderPath serves the static fallback image.
	PlaceholderPath = "/assets/placeholder.png"
)

// placeholderPNG is the fallback image, a small flat gray square.
var placeholderPNG = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	gray := color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, gray)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// BinaryFetcher retrieves an authenticated binary resource from the backend.
// Implemented by the gateway client.
type BinaryFetcher interface {
	GetBinary(ctx context.Context, sess *models.Session, path string) ([]byte, string, error)
}

type blob struct {
	data        []byte
	contentType string
}

type pageKey struct {
	token string
	name  string
}

// Manager owns every cached blob and the page sets that reference them.
type Manager struct {
	fetcher BinaryFetcher
	log     *zap.Logger

	mu    sync.Mutex
	blobs map[string]blob
	pages map[pageKey]*Page
}

// NewManager creates an empty blob cache over the given fetcher.
func NewManager(fetcher BinaryFetcher, log *zap.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		log:     log,
		blobs:   make(map[string]blob),
		pages:   make(map[pageKey]*Page),
	}
}

// Page returns a fresh page set for the session and page name, releasing the
// blobs of the previous load of the same page. One page set exists per
// (session, page) at a time, which bounds memory to one page's images per
// open view.
func (m *Manager) Page(sessionToken, name string) *Page {
	key := pageKey{token: sessionToken, name: name}

	m.mu.Lock()
	old := m.pages[key]
	p := &Page{m: m, key: key, urls: make(map[string]string), keys: make(map[string]string)}
	m.pages[key] = p
	m.mu.Unlock()

	if old != nil {
		old.Release()
	}
	return p
}

// ReleaseSession frees every blob belonging to the session's pages. Called
// on logout and when the backend invalidates the credential.
func (m *Manager) ReleaseSession(sessionToken string) {
	m.mu.Lock()
	var pages []*Page
	for key, p := range m.pages {
		if key.token == sessionToken {
			pages = append(pages, p)
			delete(m.pages, key)
		}
	}
	m.mu.Unlock()

	for _, p := range pages {
		p.Release()
	}
}

// BlobCount reports how many blobs are held. Used by tests to check the
// release contract.
func (m *Manager) BlobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// PageCount reports how many page sets are tracked. Used by tests.
func (m *Manager) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// ServeBlob handles GET /assets/blob/{key}. Unknown keys answer 404 with the
// placeholder bytes so a released image degrades instead of breaking.
func (m *Manager) ServeBlob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	m.mu.Lock()
	b, ok := m.blobs[key]
	m.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(placeholderPNG)
		return
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	_, _ = w.Write(b.data)
}

// ServePlaceholder handles GET /assets/placeholder.png.
func (m *Manager) ServePlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(placeholderPNG)
}

func (m *Manager) putBlob(data []byte, contentType string) string {
	key := uuid.NewString()
	m.mu.Lock()
	m.blobs[key] = blob{data: data, contentType: contentType}
	m.mu.Unlock()
	return key
}

func (m *Manager) dropBlob(key string) {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
}

// Page maps entity ids to locally addressable image URLs for one page load.
type Page struct {
	m   *Manager
	key pageKey

	mu       sync.Mutex
	urls     map[string]string
	keys     map[string]string
	released bool
}

// Fetch retrieves the entity's image with the session credential and records
// a local blob URL for it. Any failure maps the entity to the placeholder
// instead; one broken image never stops the rest of a page. Entities write
// disjoint map keys, so callers may fetch concurrently.
func (p *Page) Fetch(ctx context.Context, sess *models.Session, entityID, basePath, filename string) {
	if filename == "" {
		p.setURL(entityID, "", PlaceholderPath)
		return
	}

	data, contentType, err := p.m.fetcher.GetBinary(ctx, sess, basePath+"/"+filename)
	if err != nil {
		p.m.log.Debug("image fetch failed, using placeholder",
			zap.String("entity", entityID), zap.String("filename", filename), zap.Error(err))
		p.setURL(entityID, "", PlaceholderPath)
		return
	}

	key := p.m.putBlob(data, contentType)
	p.setURL(entityID, key, BlobPathPrefix+key)
}

// URL returns the recorded image URL for the entity, or the placeholder if
// none was fetched.
func (p *Page) URL(entityID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if url, ok := p.urls[entityID]; ok {
		return url
	}
	return PlaceholderPath
}

// URLs returns a copy of the entity-to-URL map for the view model.
func (p *Page) URLs() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.urls))
	for id, url := range p.urls {
		out[id] = url
	}
	return out
}

// Release frees every blob this page created and drops the page from its
// manager. Safe to call more than once.
func (p *Page) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	keys := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		keys = append(keys, key)
	}
	p.keys = nil
	p.urls = nil
	p.mu.Unlock()

	p.m.mu.Lock()
	if p.m.pages[p.key] == p {
		delete(p.m.pages, p.key)
	}
	p.m.mu.Unlock()

	for _, key := range keys {
		p.m.dropBlob(key)
	}
}

// setURL records the entity's URL, releasing a blob it replaces. A fetch
// that lands after Release drops its blob immediately.
func (p *Page) setURL(entityID, blobKey, url string) {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		if blobKey != "" {
			p.m.dropBlob(blobKey)
		}
		return
	}
	oldKey := p.keys[entityID]
	if blobKey == "" {
		delete(p.keys, entityID)
	} else {
		p.keys[entityID] = blobKey
	}
	p.urls[entityID] = url
	p.mu.Unlock()

	if oldKey != "" && oldKey != blobKey {
		p.m.dropBlob(oldKey)
	}
}
