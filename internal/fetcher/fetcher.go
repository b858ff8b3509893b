package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/season"
)

// DefaultUserAgent mimics a desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// FetchError reports any failure to obtain a season's page
type FetchError struct {
	Season season.Key
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithBaseURL overrides season.DefaultBaseURL
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.baseURL = baseURL
	}
}

// WithUserAgent overrides DefaultUserAgent
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithRateLimit spaces outbound requests to at most perMinute per minute.
// Zero or negative disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(f *Fetcher) {
		if perMinute <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	}
}

// Fetcher retrieves raw HTML for a season
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// New creates a Fetcher. The default client has no timeout.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		baseURL:   season.DefaultBaseURL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the page URL that Fetch requests for key
func (f *Fetcher) URL(key season.Key) string {
	return season.URL(f.baseURL, key)
}

// Fetch downloads the statistics page for key and returns its HTML text
func (f *Fetcher) Fetch(ctx context.Context, key season.Key) (string, error) {
	u := f.URL(key)
	fail := func(err error) (string, error) {
		return "", &FetchError{Season: key, URL: u, Err: err}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return fail(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

	logger.Debug("fetching season page", logger.Fields{"season": key.String(), "url": u})

	start := time.Now()
	resp, err := f.client.Do(req)
	logger.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("reading body: %w", err))
	}

	logger.IncrCounter("fetch.ok")
	logger.Debug("fetched season page", logger.Fields{
		"season": key.String(),
		"bytes":  len(body),
	})

	return string(body), nil
}
