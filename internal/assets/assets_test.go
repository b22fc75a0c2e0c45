package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

// fakeFetcher serves scripted binaries by path.
type fakeFetcher struct {
	data map[string][]byte
}

func (f *fakeFetcher) GetBinary(ctx context.Context, sess *models.Session, path string) ([]byte, string, error) {
	if b, ok := f.data[path]; ok {
		return b, "image/jpeg", nil
	}
	return nil, "", errors.New("not found")
}

func testSession() *models.Session {
	return &models.Session{Token: "tok-1", Credential: "cred-1"}
}

func blobRouter(m *Manager) http.Handler {
	r := chi.NewRouter()
	r.Get("/assets/blob/{key}", m.ServeBlob)
	r.Get("/assets/placeholder.png", m.ServePlaceholder)
	return r
}

func TestFetch_SuccessMapsToServableBlob(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
	}}, zap.NewNop())

	page := m.Page("tok-1", "user/dashboard")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")

	url := page.URL("p1")
	require.True(t, strings.HasPrefix(url, BlobPathPrefix), "got %q", url)

	rec := httptest.NewRecorder()
	blobRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-a", rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestFetch_FailureMapsToPlaceholder(t *testing.T) {
	m := NewManager(&fakeFetcher{}, zap.NewNop())

	page := m.Page("tok-1", "user/dashboard")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "broken.jpg")

	assert.Equal(t, PlaceholderPath, page.URL("p1"))
	assert.Equal(t, 0, m.BlobCount())
}

func TestFetch_EmptyFilenameMapsToPlaceholder(t *testing.T) {
	m := NewManager(&fakeFetcher{}, zap.NewNop())

	page := m.Page("tok-1", "user/dashboard")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "")

	assert.Equal(t, PlaceholderPath, page.URL("p1"))
}

func TestFetch_OneFailureDoesNotStopOthers(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
	}}, zap.NewNop())

	page := m.Page("tok-1", "user/dashboard")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "broken.jpg")
	page.Fetch(context.Background(), testSession(), "p2", "/images/products", "a.jpg")

	urls := page.URLs()
	assert.Equal(t, PlaceholderPath, urls["p1"])
	assert.True(t, strings.HasPrefix(urls["p2"], BlobPathPrefix))
}

func TestURL_UnknownEntityIsPlaceholder(t *testing.T) {
	m := NewManager(&fakeFetcher{}, zap.NewNop())
	page := m.Page("tok-1", "user/dashboard")
	assert.Equal(t, PlaceholderPath, page.URL("never-fetched"))
}

func TestRelease_FreesEveryBlob(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
		"/images/products/b.jpg": []byte("jpeg-b"),
	}}, zap.NewNop())

	page := m.Page("tok-1", "user/dashboard")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")
	page.Fetch(context.Background(), testSession(), "p2", "/images/products", "b.jpg")
	require.Equal(t, 2, m.BlobCount())

	url := page.URL("p1")
	page.Release()
	assert.Equal(t, 0, m.BlobCount())

	// Released blobs degrade to the placeholder, not an error page.
	rec := httptest.NewRecorder()
	blobRouter(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	// Release is idempotent.
	page.Release()
}

func TestRelease_PrunesManagerEntry(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
	}}, zap.NewNop())

	page := m.Page("tok-1", "user/product/p1")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")
	require.Equal(t, 1, m.PageCount())

	page.Release()
	assert.Equal(t, 0, m.PageCount())
	assert.Equal(t, 0, m.BlobCount())
}

func TestPageReload_ReleasesPreviousLoad(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
	}}, zap.NewNop())

	first := m.Page("tok-1", "user/dashboard")
	first.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")
	require.Equal(t, 1, m.BlobCount())

	second := m.Page("tok-1", "user/dashboard")
	second.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")

	// Only the second load's blob remains.
	assert.Equal(t, 1, m.BlobCount())
	assert.Equal(t, PlaceholderPath, first.URL("p1"))
}

func TestReplacingEntityImage_FreesOldBlob(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
		"/images/products/b.jpg": []byte("jpeg-b"),
	}}, zap.NewNop())

	page := m.Page("tok-1", "user/product/p1")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")
	page.Fetch(context.Background(), testSession(), "p1", "/images/products", "b.jpg")

	assert.Equal(t, 1, m.BlobCount())
}

func TestReleaseSession_FreesAllPages(t *testing.T) {
	m := NewManager(&fakeFetcher{data: map[string][]byte{
		"/images/products/a.jpg": []byte("jpeg-a"),
		"/images/users/u.jpg":    []byte("jpeg-u"),
	}}, zap.NewNop())

	dash := m.Page("tok-1", "admin/dashboard")
	dash.Fetch(context.Background(), testSession(), "p1", "/images/products", "a.jpg")
	users := m.Page("tok-1", "admin/users")
	users.Fetch(context.Background(), testSession(), "u1", "/images/users", "u.jpg")

	other := m.Page("tok-2", "user/dashboard")
	other.Fetch(context.Background(), &models.Session{Token: "tok-2"}, "p1", "/images/products", "a.jpg")

	require.Equal(t, 3, m.BlobCount())

	m.ReleaseSession("tok-1")
	assert.Equal(t, 1, m.BlobCount())
	assert.True(t, strings.HasPrefix(other.URL("p1"), BlobPathPrefix))
}
