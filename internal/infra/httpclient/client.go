package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Options struct {
	// Timeout bounds the wait for response headers. Bodies stream without a
	// deadline; callers bound them through the request context.
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	client     *http.Client
	maxRetries int
}

func New(opts Options) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = opts.Timeout
	return &Client{
		client: &http.Client{
			Transport: transport,
		},
		maxRetries: opts.MaxRetries,
	}
}

// Do sends req, retrying transport errors and 5xx responses with a linear delay.
// Non-5xx responses are returned as is; the caller owns the body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := c.client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d, body: %s", resp.StatusCode, string(body))
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Get fetches url and fails on any non-2xx status.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return resp, nil
}
