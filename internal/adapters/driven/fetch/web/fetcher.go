// Package web fetches blog posts over HTTP and scrapes their title and
// description for ingestion.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// maxPageSize bounds how much of a response body is scanned.
const maxPageSize = 4 << 20

// Config holds configuration for the page fetcher.
type Config struct {
	// BaseURL is prepended to every key (default: https://www.fermyon.com/blog/).
	BaseURL string

	// RatePerSecond throttles outbound requests. Zero or less disables throttling.
	RatePerSecond float64

	// Timeout bounds a single request (default: 30s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Fetcher retrieves posts over HTTP.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// NewFetcher creates a page fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultFetchBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = domain.DefaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "related-posts"
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
	}
}

// URL returns the address a key is fetched from.
func (f *Fetcher) URL(key string) string {
	return f.baseURL + key
}

// Fetch downloads the post and extracts the first <h1> and the description meta tag.
func (f *Fetcher) Fetch(ctx context.Context, key string) (*domain.WebPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(key), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrFetchFailed, f.URL(key), resp.StatusCode)
	}

	page, err := parsePage(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrFetchFailed, f.URL(key), err)
	}
	return page, nil
}

// parsePage scans an HTML document for the first <h1> and the
// <meta name="description"> content. The title keeps its raw, escaped text.
func parsePage(r io.Reader) (*domain.WebPage, error) {
	page := &domain.WebPage{}
	z := html.NewTokenizer(r)

	var (
		inTitle    bool
		titleDone  bool
		descDone   bool
		titleParts []string
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			page.Title = strings.TrimSpace(strings.Join(titleParts, ""))
			return page, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.H1:
				if !titleDone && tt == html.StartTagToken {
					inTitle = true
				}
			case atom.Meta:
				if !descDone && hasAttr {
					if content, ok := descriptionContent(z); ok {
						page.Description = content
						descDone = true
					}
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.H1 {
				inTitle = false
				titleDone = true
			}

		case html.TextToken:
			if inTitle {
				titleParts = append(titleParts, string(z.Raw()))
			}
		}

		if titleDone && descDone {
			page.Title = strings.TrimSpace(strings.Join(titleParts, ""))
			return page, nil
		}
	}
}

// descriptionContent reads the attributes of the current meta tag and reports
// its content when the tag is name="description".
func descriptionContent(z *html.Tokenizer) (string, bool) {
	var (
		isDescription bool
		content       string
	)
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "name":
			isDescription = strings.EqualFold(string(val), "description")
		case "content":
			content = string(val)
		}
		if !more {
			break
		}
	}
	return content, isDescription
}
