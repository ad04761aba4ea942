// Package httpclient is the HTTP GET used for every Wikipedia request: a
// fixed User-Agent, a per-request timeout and exponential backoff on
// transient failures.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

const (
	DefaultUserAgent = "legislator-ages/1.0 (github.com/pfrederiksen/legislator-ages)"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
)

// maxBodySize caps a response body. The largest list pages are a few MB.
const maxBodySize = 32 << 20

// StatusError is returned for a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Retries is the number of retries after the first attempt. Zero means
	// DefaultRetries; a negative value disables retrying.
	Retries int

	// InitialInterval is the first backoff wait; tests shorten it.
	InitialInterval time.Duration

	// HTTPClient replaces the default client when set.
	HTTPClient *http.Client
}

// Client fetches URLs with retries.
type Client struct {
	http            *http.Client
	userAgent       string
	retries         int
	initialInterval time.Duration
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch {
	case opts.Retries == 0:
		opts.Retries = DefaultRetries
	case opts.Retries < 0:
		opts.Retries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		http:            hc,
		userAgent:       opts.UserAgent,
		retries:         opts.Retries,
		initialInterval: opts.InitialInterval,
	}
}

// UserAgent returns the User-Agent sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches url and returns the body. Network errors, 429 and 5xx are
// retried; other statuses fail immediately with a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("http.get", time.Since(start)) }()

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetching %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &StatusError{URL: url, StatusCode: resp.StatusCode}
			if serr.Temporary() {
				return serr
			}
			return backoff.Permanent(serr)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		body = data
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("http.retries")
		logger.Warn("Retrying request", logger.Fields{
			"url":  url,
			"wait": wait.String(),
		})
		logger.Debug("Retry cause", logger.Fields{"error": err.Error()})
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		logger.IncrCounter("http.failures")
		return nil, err
	}
	return body, nil
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialInterval
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.retries)), ctx)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.StatusCode == code
}
