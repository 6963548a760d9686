package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var _ providers.Fetcher = (*Client)(nil)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Fetch downloads url with a small retry policy. Failures are reported as
// *providers.ContentFetchError, except for context cancellation which is
// returned as is.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) (providers.Page, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return providers.Page{}, ctx.Err()
				}
				return providers.Page{}, &providers.ContentFetchError{URL: url, Err: err}
			}
		}

		page, err := c.get(ctx, url, headers)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return providers.Page{}, ctx.Err()
		}
		if !retryable(err) || attempt == c.retries {
			break
		}

		c.debugf("retrying %s after attempt %d: %v\n", url, attempt, err)

		select {
		case <-time.After(c.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return providers.Page{}, ctx.Err()
		}
	}

	return providers.Page{}, &providers.ContentFetchError{URL: url, Err: lastErr}
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) (providers.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return providers.Page{}, permanent{err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return providers.Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return providers.Page{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := c.decode(url, resp)
	if err != nil {
		return providers.Page{}, err
	}

	effective := url
	if resp.Request != nil && resp.Request.URL != nil {
		effective = resp.Request.URL.String()
	}

	return providers.Page{
		RequestedURL: url,
		EffectiveURL: effective,
		Body:         body,
	}, nil
}

// decode reads the body converting it to UTF-8 from whatever encoding the
// headers or the first kilobyte declare.
func (c *Client) decode(url string, resp *http.Response) (string, error) {
	r := bufio.NewReader(resp.Body)
	e := DetermineEncoding(r, resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	var progress func(int64)
	if c.onRead != nil {
		var last int64
		progress = func(done int64) {
			c.onRead(url, done-last)
			last = done
		}
	}

	if _, err := copyWithProgress(&buf, transform.NewReader(r, e.NewDecoder()), progress); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func DetermineEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	peek, err := r.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(peek, contentType)

	return e
}

// permanent marks errors that a retry cannot fix.
type permanent struct{ error }

func (p permanent) Unwrap() error { return p.error }

func retryable(err error) bool {
	var p permanent
	if errors.As(err, &p) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}

	return true
}
