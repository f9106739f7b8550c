// Package httpx is the shared outbound HTTP helper used by every poller and
// API client in this repo: a plain *http.Client with sane per-request
// timeouts, wrapped in a bounded exponential backoff for transient
// transport failures (connection refused, timeouts, 5xx). Each pipeline
// stage still owns its own outer cadence (§4); this only smooths over a
// single flaky request within one poll.
package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/alcionai/clues"
	"github.com/cenkalti/backoff/v4"
)

// Client is a thin, retryable wrapper over *http.Client.
type Client struct {
	inner   *http.Client
	retries uint64
}

// New constructs a Client with the given per-request timeout and a fixed
// count of three retries for transient failures.
func New(timeout time.Duration) *Client {
	return &Client{
		inner: &http.Client{
			Timeout: timeout,
		},
		retries: 3,
	}
}

// Do builds and executes a request via mkReq, retrying transport failures
// and 5xx responses with exponential backoff, up to three retries after the
// first attempt (four attempts in all). A
// builder func (rather than a prebuilt *http.Request) is required because a
// request with a body cannot be safely replayed across retries. 4xx
// responses are returned immediately: retrying a client error never helps.
func (c *Client) Do(ctx context.Context, mkReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)

	op := func() error {
		req, err := mkReq()
		if err != nil {
			return backoff.Permanent(clues.Wrap(err, "building request"))
		}

		r, err := c.inner.Do(req)
		if err != nil {
			return clues.Wrap(err, "transport error")
		}

		if r.StatusCode >= 500 {
			_ = r.Body.Close()
			return clues.New("server error").With("status", r.StatusCode)
		}

		resp = r

		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	return resp, nil
}

// Get is a convenience wrapper for the common case of a bodyless GET.
func (c *Client) Get(ctx context.Context, url string, setHeaders func(*http.Request)) (*http.Response, error) {
	return c.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		if setHeaders != nil {
			setHeaders(req)
		}

		return req, nil
	})
}

// ReadAll is a small convenience used by scrapers/parsers that need the
// full response body as bytes before closing it.
func ReadAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
