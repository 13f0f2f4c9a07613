package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

const (
	// FetchTimeout bounds every single link fetch.
	FetchTimeout = 5 * time.Second
	// MaxContentChars caps the stored content of a link.
	MaxContentChars = 50_000
	// DefaultWorkers is the fetch concurrency used when none is configured.
	DefaultWorkers = 4

	// A rune is at most 4 bytes, so this many bytes always holds MaxContentChars runes.
	maxContentBytes = MaxContentChars * 4
)

// Doer is the subset of *http.Client the fetcher needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads link content with a per-URL timeout. It never fails as a
// whole: a URL that cannot be fetched yields an empty document.
type Fetcher struct {
	http    Doer
	workers int
	timeout time.Duration
	log     *zap.Logger
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithDoer replaces the default HTTP client.
func WithDoer(d Doer) Option {
	return func(f *Fetcher) { f.http = d }
}

// WithWorkers sets how many URLs are fetched at once.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger attaches a logger; fetch failures are reported at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// NewFetcher returns a Fetcher with a 5 second per-URL timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:    &http.Client{Timeout: FetchTimeout},
		workers: DefaultWorkers,
		timeout: FetchTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll returns one LinkDocument per URL, in input order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []models.LinkDocument {
	docs := make([]models.LinkDocument, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for idx, u := range urls {
		g.Go(func() error {
			content, err := f.fetch(gCtx, u)
			if err != nil {
				f.log.Debug("link fetch failed", zap.String("url", u), zap.Error(err))
				content = ""
			}
			docs[idx] = models.LinkDocument{URL: u, Content: content}
			return nil // a failed link never cancels its siblings
		})
	}
	_ = g.Wait()

	return docs
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "issue-retriever")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); !isTextContentType(ct) {
		return "", fmt.Errorf("non-text content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return truncateRunes(string(body), MaxContentChars), nil
}

// truncateRunes keeps at most n characters of s.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}

// isTextContentType accepts text/* and the common textual application types.
// A missing header is treated as text.
func isTextContentType(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if mediaType == "" || strings.HasPrefix(mediaType, "text/") {
		return true
	}
	if strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+xml") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/xhtml+xml", "application/javascript",
		"application/yaml", "application/x-yaml", "application/toml", "application/markdown":
		return true
	default:
		return false
	}
}
