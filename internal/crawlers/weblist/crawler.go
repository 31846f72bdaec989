// Package weblist implements a crawler for sites that expose a listing
// page of article links. It fetches the listing, follows links that
// match a configurable pattern and extracts each article's plain text.
package weblist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driven"
	"github.com/farmlore/farmlore/internal/logger"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultUserAgent         = "farmlore-crawler/1.0"
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRequestsPerSecond = 1.0
	DefaultMaxArticles       = 50
)

// Source describes one listing site to crawl.
type Source struct {
	// Name is the label recorded on produced documents.
	Name string

	// ListURL is the page carrying the article links.
	ListURL string

	// LinkPattern selects article links from the listing. Links are
	// resolved against ListURL before matching, so patterns can match
	// absolute URLs.
	LinkPattern string

	// MaxArticles caps how many articles one run fetches (default: 50).
	MaxArticles int
}

// Config holds fetch behaviour shared by all sources.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries is the fetch retry count (default: 3).
	MaxRetries int

	// RequestsPerSecond is the politeness rate limit (default: 1).
	RequestsPerSecond float64
}

// Crawler fetches documents from one listing site.
type Crawler struct {
	source      Source
	client      *http.Client
	limiter     *rate.Limiter
	linkPattern *regexp.Regexp
	userAgent   string
	maxRetries  int
}

// New creates a crawler for one listing source.
func New(source Source, cfg Config) (*Crawler, error) {
	if source.Name == "" {
		return nil, fmt.Errorf("%w: crawler source needs a name", domain.ErrInvalidInput)
	}
	if source.ListURL == "" {
		return nil, fmt.Errorf("%w: crawler source %s needs a list URL", domain.ErrInvalidInput, source.Name)
	}
	if source.MaxArticles <= 0 {
		source.MaxArticles = DefaultMaxArticles
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	pattern := source.LinkPattern
	if pattern == "" {
		pattern = ".*"
	}
	linkPattern, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: link pattern for %s: %w", domain.ErrInvalidInput, source.Name, err)
	}

	return &Crawler{
		source:      source,
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		linkPattern: linkPattern,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// Name returns the source label recorded on produced documents.
func (c *Crawler) Name() string {
	return c.source.Name
}

// Crawl streams articles from the listing. Per-article failures go to
// the error channel and never stop the run; both channels close when
// the run is done.
func (c *Crawler) Crawl(ctx context.Context) (<-chan domain.CrawledDocument, <-chan error) {
	docsCh := make(chan domain.CrawledDocument)
	errsCh := make(chan error, 1)

	go func() {
		defer close(docsCh)
		defer close(errsCh)

		listBody, err := c.fetch(ctx, c.source.ListURL)
		if err != nil {
			errsCh <- fmt.Errorf("fetch listing %s: %w", c.source.ListURL, err)
			return
		}

		links := c.articleLinks(listBody)
		logger.Debug("Crawler %s: %d article links on listing", c.source.Name, len(links))

		for _, link := range links {
			if ctx.Err() != nil {
				return
			}

			body, err := c.fetch(ctx, link)
			if err != nil {
				select {
				case errsCh <- fmt.Errorf("fetch article %s: %w", link, err):
				case <-ctx.Done():
					return
				}
				continue
			}

			doc := domain.CrawledDocument{
				Title:  extractTitle(body),
				URL:    link,
				Text:   stripHTML(body),
				Source: c.source.Name,
			}

			select {
			case docsCh <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docsCh, errsCh
}

// articleLinks resolves and filters the listing's links, deduplicated
// in document order, capped at MaxArticles.
func (c *Crawler) articleLinks(listBody string) []string {
	base, err := url.Parse(c.source.ListURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	for _, raw := range extractLinks(listBody) {
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		resolved.Fragment = ""
		link := resolved.String()

		if !c.linkPattern.MatchString(link) {
			continue
		}
		if link == c.source.ListURL {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}

		links = append(links, link)
		if len(links) >= c.source.MaxArticles {
			break
		}
	}
	return links
}

// fetch GETs a URL with rate limiting and retry on transient failures.
func (c *Crawler) fetch(ctx context.Context, target string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between attempts.
			delay := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, err := c.get(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Context errors are not worth retrying.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("%w: after %d attempts: %w", domain.ErrCrawlerFailed, c.maxRetries, lastErr)
}

// get performs a single GET request.
func (c *Crawler) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}
