// Package fetch is the HTTP side of toc resolution: it downloads pages,
// decodes them to UTF-8 and reports where redirects ended up.
package fetch

import (
	"bufio"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	defaultBackoff = 500 * time.Millisecond
	defaultRetries = 3
)

// DebugLogger is the printf-style logger the client reports requests to.
type DebugLogger interface {
	Debugf(string, ...any)
}

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Cookie     string
	CookieFile string

	// Retries is the number of attempts per page, at least one.
	Retries int
	Backoff time.Duration

	// RatePerSecond limits requests across all pages. Zero disables it.
	RatePerSecond float64

	CloudflareBypass bool

	Transport   http.RoundTripper
	DebugLogger DebugLogger

	// OnRead is called while a body is read with the bytes read since the
	// previous call for the same attempt. Retried attempts report again.
	OnRead func(url string, n int64)
}

// Client implements providers.Fetcher.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	log     DebugLogger
	onRead  func(url string, n int64)
}

func NewClient(opts Options) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	baseTransport := opts.Transport
	if baseTransport == nil {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxConnsPerHost:     16,
			MaxIdleConnsPerHost: 16,
			ForceAttemptHTTP2:   true,
		}
	}
	if opts.CloudflareBypass {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: roundTripper{
				base:         baseTransport,
				ua:           PickUserAgent(opts.UserAgent),
				cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
				log:          opts.DebugLogger,
			},
			Jar: jar,
		},
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.DebugLogger,
		onRead:  opts.OnRead,
	}
	if c.retries <= 0 {
		c.retries = defaultRetries
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if opts.RatePerSecond > 0 {
		burst := max(int(opts.RatePerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	c.debugf("HTTP client initialized (timeout=%s, retries=%d, rate=%.2f/s, cf=%t)\n",
		timeout, c.retries, opts.RatePerSecond, opts.CloudflareBypass)

	return c, nil
}

func (c *Client) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          DebugLogger
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", rt.cookieHeader)
	}

	if rt.log != nil {
		rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	return rt.base.RoundTrip(req)
}

// joinCookies appends the first non-empty line of file to the inline cookie.
func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file == "" {
		return s
	}

	f, err := os.Open(file)
	if err != nil {
		return s
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if s == "" {
			return line
		}
		return s + "; " + line
	}

	return s
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
