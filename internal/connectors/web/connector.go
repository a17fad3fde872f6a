// Package web provides a connector that fetches a configured list of
// web pages.
package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driven"
	"github.com/minato-lab/innersearch/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps a single page download.
const maxBodyBytes = 8 << 20

// Connector fetches each configured URL and emits one raw document per
// page. Fetches are rate limited so indexing a long URL list does not
// hammer the host.
type Connector struct {
	urls    []string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures the connector.
type Option func(*Connector)

// WithClient overrides the HTTP client. Useful for testing.
func WithClient(client *http.Client) Option {
	return func(c *Connector) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRateLimit sets the fetch rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Connector) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a web connector for the given URL list.
func New(urls []string, opts ...Option) *Connector {
	c := &Connector{
		urls:    urls,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "web"
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{SupportsWatch: false}
}

// Load fetches the configured URLs in order. Any fetch failure aborts
// the run with a URL-tagged load error.
func (c *Connector) Load(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		for _, url := range c.urls {
			if err := c.limiter.Wait(ctx); err != nil {
				errs <- err
				return
			}

			raw, err := c.fetch(ctx, url)
			if err != nil {
				errs <- fmt.Errorf("%w: fetch %s: %w", domain.ErrLoad, url, err)
				return
			}

			select {
			case docs <- raw:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return docs, errs
}

// fetch downloads one page and transcodes it to UTF-8 when the declared
// or sniffed charset is something else.
func (c *Connector) fetch(ctx context.Context, url string) (domain.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RawDocument{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	mimeType := "text/html"
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "" {
		mimeType = mt
	}

	if !utf8.Valid(body) {
		enc, name, _ := charset.DetermineEncoding(body, contentType)
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("transcode from %s: %w", name, err)
		}
		logger.Debug("Transcoded %s from %s", url, name)
		body = decoded
	}

	return domain.RawDocument{URI: url, MIMEType: mimeType, Content: body}, nil
}

// Watch is not supported for web sources.
func (c *Connector) Watch(context.Context) (<-chan string, error) {
	return nil, domain.ErrNotImplemented
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
