// Package live fetches departure boards from the TfL bus, Tube and DLR feeds. Responses
// are cached by URL for a short while and transient failures are retried.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"transitbot/internal/transit"
)

// Options configures a Client.
type Options struct {
	BusURL        string // fmt template taking a bus stop code
	TubeURL       string // fmt template taking a line code then a station code
	DLRURL        string // fmt template taking a DLR station code
	UserAgent     string
	Timeout       time.Duration
	CacheTTL      time.Duration
	CacheSize     int
	MaxRetries    uint64
	RetryInterval time.Duration
}

// Client is an HTTP client for the live departure feeds.
type Client struct {
	busURL        string
	tubeURL       string
	dlrURL        string
	userAgent     string
	client        *http.Client
	cache         *Cache
	maxRetries    uint64
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewClient creates a live departures client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	return &Client{
		busURL:    opts.BusURL,
		tubeURL:   opts.TubeURL,
		dlrURL:    opts.DLRURL,
		userAgent: opts.UserAgent,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		cache:         NewCache(opts.CacheTTL, opts.CacheSize),
		maxRetries:    opts.MaxRetries,
		retryInterval: opts.RetryInterval,
		logger:        logger,
	}
}

// statusError is a non-200 reply from upstream.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.code, e.url)
}

// Fetch returns the body at url, from the cache if fresh. Any failure is reported
// as transit.ErrUpstreamUnavailable wrapping the cause.
func (c *Client) Fetch(ctx context.Context, url, accept string) ([]byte, error) {
	if body, ok := c.cache.Get(url); ok {
		c.logger.Debug("using cached response", "url", url)
		return body, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	body, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			return c.get(ctx, url, accept)
		},
		policy,
		func(err error, d time.Duration) {
			c.logger.Warn("live fetch failed, backing off", "url", url, "wait", d, "error", err)
		},
	)
	if err != nil {
		c.logger.Error("live fetch failed", "url", url, "error", err)
		return nil, transit.Upstream(err)
	}
	c.cache.Set(url, body)
	return body, nil
}

// Forget drops a cached body that turned out to be unusable.
func (c *Client) Forget(url string) {
	c.cache.Delete(url)
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := &statusError{code: resp.StatusCode, url: url}
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(serr)
		}
		return nil, serr
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
