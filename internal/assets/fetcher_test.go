package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memStorage struct {
	objects map[string][]byte
	fail    bool
	closed  int
}

func (s *memStorage) Put(ctx context.Context, name, contentType string, data []byte) error {
	if s.fail {
		return errors.New("bucket unavailable")
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[name] = data
	return nil
}

func (s *memStorage) BaseURL() string { return "mem://assets" }
func (s *memStorage) Close() error    { s.closed++; return nil }

type memCache struct {
	entries map[string]string
	closed  int
}

func (c *memCache) Get(ctx context.Context, sourceURL string) (string, bool, error) {
	v, ok := c.entries[sourceURL]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, sourceURL, rehostedURL string) error {
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	c.entries[sourceURL] = rehostedURL
	return nil
}

func (c *memCache) Close() error { c.closed++; return nil }

func imageServer(t *testing.T, hits *int32, status int, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRehost(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status      int
		contentType string
		body        []byte
		cfg         Config
		failStorage bool
		noStorage   bool
		disabled    bool

		wantRehosted bool
		wantHits     int32
	}{
		"Success":               {status: http.StatusOK, contentType: "image/png", body: pngBytes, wantRehosted: true, wantHits: 1},
		"Sniffs content type":   {status: http.StatusOK, body: pngBytes, wantRehosted: true, wantHits: 1},
		"Server error":          {status: http.StatusInternalServerError, wantHits: 1},
		"Server error retried":  {status: http.StatusServiceUnavailable, cfg: Config{MaxRetries: 2}, wantHits: 3},
		"Not found not retried": {status: http.StatusNotFound, cfg: Config{MaxRetries: 2}, wantHits: 1},
		"Not an image":          {status: http.StatusOK, contentType: "text/html", body: []byte("<html></html>"), wantHits: 1},
		"Too large":             {status: http.StatusOK, contentType: "image/png", body: pngBytes, cfg: Config{MaxBytes: 4}, wantHits: 1},
		"Upload fails":          {status: http.StatusOK, contentType: "image/png", body: pngBytes, failStorage: true, wantHits: 1},
		"Disabled":              {status: http.StatusOK, contentType: "image/png", body: pngBytes, disabled: true, wantHits: 0},
		"No storage is a no-op": {status: http.StatusOK, contentType: "image/png", body: pngBytes, noStorage: true, wantHits: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var hits int32
			srv := imageServer(t, &hits, tc.status, tc.contentType, tc.body)
			source := srv.URL + "/logos/toyota.png"

			cfg := tc.cfg
			cfg.Enabled = !tc.disabled
			cfg.InitialBackoff = time.Millisecond
			storage := &memStorage{fail: tc.failStorage}
			var store ObjectStorage = storage
			if tc.noStorage {
				store = nil
			}

			got, ok := NewFetcher(cfg, store, nil).Rehost(context.Background(), source, "Toyota", "brands")

			assert.Equal(t, tc.wantHits, atomic.LoadInt32(&hits))
			if !tc.wantRehosted {
				assert.False(t, ok)
				assert.Equal(t, source, got, "Failures must return the original URL")
				return
			}
			assert.True(t, ok)
			assert.True(t, strings.HasPrefix(got, "mem://assets/brands/toyota-"), "got %s", got)
			assert.True(t, strings.HasSuffix(got, ".png"), "got %s", got)
			require.Len(t, storage.objects, 1)
		})
	}
}

func TestRehostUsesCache(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := imageServer(t, &hits, http.StatusOK, "image/png", pngBytes)
	cache := &memCache{}
	f := NewFetcher(Config{Enabled: true, PublicBaseURL: "https://cdn.example.com/"}, &memStorage{}, cache)
	source := srv.URL + "/visa.svg"

	first, ok := f.Rehost(context.Background(), source, "Visa", "payment-methods")
	require.True(t, ok)
	second, ok := f.Rehost(context.Background(), source, "Visa", "payment-methods")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "Cached URLs must not be downloaded again")
	assert.True(t, strings.HasPrefix(first, "https://cdn.example.com/payment-methods/visa-"), "got %s", first)
}

func TestRehostEmptyURL(t *testing.T) {
	t.Parallel()

	got, ok := NewFetcher(Config{Enabled: true}, &memStorage{}, nil).Rehost(context.Background(), "", "x", "y")

	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestFetcherCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	storage, cache := &memStorage{}, &memCache{}
	f := NewFetcher(Config{Enabled: true}, storage, cache)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	assert.Equal(t, 1, storage.closed)
	assert.Equal(t, 1, cache.closed)
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url         string
		name        string
		category    string
		contentType string

		wantPrefix string
		wantExt    string
	}{
		"Extension from URL":          {url: "https://x.test/a/logo.SVG", name: "Apple Pay", category: "payment-methods", contentType: "image/png", wantPrefix: "payment-methods/apple-pay-", wantExt: ".svg"},
		"Extension from content type": {url: "https://x.test/logo", name: "Kia", category: "brands", contentType: "image/jpeg", wantPrefix: "brands/kia-", wantExt: ".jpg"},
		"Unknown URL extension":       {url: "https://x.test/logo.php", name: "Kia", category: "brands", contentType: "image/webp", wantPrefix: "brands/kia-", wantExt: ".webp"},
		"Fallbacks":                   {url: "https://x.test/logo", name: "", category: "", wantPrefix: "misc/asset-", wantExt: ".bin"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := ObjectName(tc.url, tc.name, tc.category, tc.contentType)

			assert.True(t, strings.HasPrefix(got, tc.wantPrefix), "got %s", got)
			assert.True(t, strings.HasSuffix(got, tc.wantExt), "got %s", got)
			assert.Equal(t, got, ObjectName(tc.url, tc.name, tc.category, tc.contentType), "Names must be stable")
		})
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	a := cacheKey("https://logos.example.com/a.png")
	b := cacheKey("https://logos.example.com/b.png")

	assert.True(t, strings.HasPrefix(a, cachePrefix))
	assert.Len(t, a, len(cachePrefix)+16)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cacheKey("https://logos.example.com/a.png"))
}
