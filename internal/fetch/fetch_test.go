package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/mangatoc/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()

	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	c, err := NewClient(opts)
	require.NoError(t, err)

	return c
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/book/1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/book/1/toc/", http.StatusFound)
	})
	mux.HandleFunc("/book/1/toc/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ul><li><a href="c1">C1</a></li></ul>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := newTestClient(t, Options{}).Fetch(context.Background(), srv.URL+"/book/1", nil)
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/book/1", page.RequestedURL)
	assert.Equal(t, srv.URL+"/book/1/toc/", page.EffectiveURL)
	assert.Contains(t, page.Body, "C1")
}

func TestFetch_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookie.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("\n  session=abc  \nignored=1\n"), 0o600))

	c := newTestClient(t, Options{UserAgent: "mangatoc-test", Cookie: "a=1", CookieFile: cookieFile})
	_, err := c.Fetch(context.Background(), srv.URL, map[string]string{"Referer": "https://ref.example.org/"})
	require.NoError(t, err)

	assert.Equal(t, "mangatoc-test", got.Get("User-Agent"))
	assert.Equal(t, "a=1; session=abc", got.Get("Cookie"))
	assert.Equal(t, "https://ref.example.org/", got.Get("Referer"))
}

func TestFetch_SourceHeadersWin(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{UserAgent: "default"})
	_, err := c.Fetch(context.Background(), srv.URL, map[string]string{"User-Agent": "mobile"})
	require.NoError(t, err)
	assert.Equal(t, "mobile", ua)
}

func TestFetch_DecodesCharset(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("<p>第一章</p>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	page, err := newTestClient(t, Options{}).Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>第一章</p>", page.Body)
}

func TestFetch_Retries(t *testing.T) {
	t.Run("server errors are retried", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("third time"))
		}))
		defer srv.Close()

		page, err := newTestClient(t, Options{Retries: 3}).Fetch(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, "third time", page.Body)
		assert.EqualValues(t, 3, hits.Load())
	})

	t.Run("client errors are not", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := newTestClient(t, Options{Retries: 3}).Fetch(context.Background(), srv.URL, nil)
		assert.ErrorIs(t, err, providers.ErrContentFetch)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
		assert.EqualValues(t, 1, hits.Load())
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(t, Options{Retries: 2}).Fetch(context.Background(), srv.URL, nil)
		assert.ErrorIs(t, err, providers.ErrContentFetch)
		assert.EqualValues(t, 2, hits.Load())
	})
}

func TestFetch_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, Options{}).Fetch(ctx, srv.URL, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NotErrorIs(t, err, providers.ErrContentFetch)
}

func TestFetch_ReportsProgress(t *testing.T) {
	body := make([]byte, 100<<10)
	for i := range body {
		body[i] = 'a'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var total, calls atomic.Int64
	c := newTestClient(t, Options{OnRead: func(url string, n int64) {
		assert.Equal(t, srv.URL, url)
		assert.Positive(t, n)
		total.Add(n)
		calls.Add(1)
	}})

	_, err := c.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.EqualValues(t, len(body), total.Load())
	assert.Greater(t, calls.Load(), int64(1), "a 100KB body is read in several chunks")
}

func TestJoinCookies(t *testing.T) {
	assert.Equal(t, "a=1", joinCookies(" a=1 ", ""))
	assert.Equal(t, "a=1", joinCookies("a=1", filepath.Join(t.TempDir(), "missing")))

	f := filepath.Join(t.TempDir(), "c")
	require.NoError(t, os.WriteFile(f, []byte("b=2\n"), 0o600))
	assert.Equal(t, "b=2", joinCookies("", f))
}
