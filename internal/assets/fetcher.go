// Package assets downloads remote images and re-hosts them on our own storage.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/Lumos-Labs-HQ/autoseed/internal/utils"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

type Config struct {
	Enabled        bool
	Timeout        time.Duration
	MaxBytes       int64
	MaxRetries     int
	InitialBackoff time.Duration
	PublicBaseURL  string // defaults to the storage's own location
}

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxBytes = 5 << 20
	defaultBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// ObjectStorage persists re-hosted objects under a slash-separated name.
type ObjectStorage interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	BaseURL() string
	Close() error
}

// URLCache remembers where a source URL was re-hosted.
type URLCache interface {
	Get(ctx context.Context, sourceURL string) (string, bool, error)
	Set(ctx context.Context, sourceURL, rehostedURL string) error
	Close() error
}

// Fetcher never fails a caller: every problem is logged and the source URL is
// handed back unchanged.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	storage ObjectStorage
	cache   URLCache

	closeOnce sync.Once
	closeErr  error
}

// NewFetcher builds a fetcher. With assets disabled or no storage it is a
// no-op. cache may be nil.
func NewFetcher(cfg Config, storage ObjectStorage, cache URLCache) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultBackoff
	}
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		storage: storage,
		cache:   cache,
	}
}

func (f *Fetcher) Enabled() bool {
	return f.cfg.Enabled && f.storage != nil
}

// Rehost returns the re-hosted URL and true, or sourceURL and false when the
// asset could not be re-hosted.
func (f *Fetcher) Rehost(ctx context.Context, sourceURL, name, category string) (string, bool) {
	if !f.Enabled() || sourceURL == "" {
		return sourceURL, false
	}

	if f.cache != nil {
		cached, ok, err := f.cache.Get(ctx, sourceURL)
		if err != nil {
			color.Yellow("    ⚠️  Asset cache lookup failed: %v", err)
		} else if ok {
			return cached, true
		}
	}

	rehosted, err := f.rehost(ctx, sourceURL, name, category)
	if err != nil {
		color.Yellow("    ⚠️  Keeping original asset URL: %v", err)
		return sourceURL, false
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, sourceURL, rehosted); err != nil {
			color.Yellow("    ⚠️  Asset cache update failed: %v", err)
		}
	}
	return rehosted, true
}

func (f *Fetcher) rehost(ctx context.Context, sourceURL, name, category string) (string, error) {
	data, contentType, err := f.download(ctx, sourceURL)
	if err != nil {
		return "", &types.AssetFetchError{URL: sourceURL, Op: "download", Err: err}
	}

	object := ObjectName(sourceURL, name, category, contentType)
	if err := f.storage.Put(ctx, object, contentType, data); err != nil {
		return "", &types.AssetFetchError{URL: sourceURL, Op: "upload", Err: err}
	}

	base := f.cfg.PublicBaseURL
	if base == "" {
		base = f.storage.BaseURL()
	}
	return strings.TrimRight(base, "/") + "/" + object, nil
}

func (f *Fetcher) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	attempts := f.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		data, contentType, retry, err := f.get(ctx, sourceURL)
		if err == nil {
			return data, contentType, nil
		}
		lastErr = err
		if !retry || attempt+1 >= attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(f.cfg.InitialBackoff, attempt)); err != nil {
			return nil, "", err
		}
	}
	return nil, "", lastErr
}

// get performs one attempt and reports whether a failure is worth retrying.
func (f *Fetcher) get(ctx context.Context, sourceURL string) ([]byte, string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "autoseed")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", isRetryableStatus(resp.StatusCode), fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, "", true, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil, "", false, fmt.Errorf("asset larger than %d bytes", f.cfg.MaxBytes)
	}
	if len(data) == 0 {
		return nil, "", false, errors.New("empty body")
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
		if i := strings.Index(contentType, ";"); i >= 0 {
			contentType = contentType[:i]
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", false, fmt.Errorf("not an image (%s)", contentType)
	}
	return data, contentType, false, nil
}

// Close releases the storage and the cache. It is safe to call twice.
func (f *Fetcher) Close() error {
	f.closeOnce.Do(func() {
		var errs []error
		if f.storage != nil {
			errs = append(errs, f.storage.Close())
		}
		if f.cache != nil {
			errs = append(errs, f.cache.Close())
		}
		f.closeErr = errors.Join(errs...)
	})
	return f.closeErr
}

var extByType = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
}

// ObjectName is "<category>/<slug>-<id>.<ext>". The id is derived from the
// source URL, so re-hosting the same asset twice overwrites one object.
func ObjectName(sourceURL, name, category, contentType string) string {
	ext := extByType[contentType]
	if u, err := url.Parse(sourceURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); knownExt(e) {
			ext = e
		}
	}
	if ext == "" {
		ext = ".bin"
	}

	slug := utils.Slugify(name)
	if slug == "" {
		slug = "asset"
	}
	if category == "" {
		category = "misc"
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL)).String()[:8]
	return fmt.Sprintf("%s/%s-%s%s", utils.Slugify(category), slug, id, ext)
}

func knownExt(ext string) bool {
	if ext == ".jpeg" {
		return true
	}
	for _, e := range extByType {
		if e == ext {
			return true
		}
	}
	return false
}

func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func backoffDuration(initial time.Duration, attempt int) time.Duration {
	d := initial << attempt
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
