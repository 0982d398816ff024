// Package fetch performs HTTP GETs against article and feed hosts with
// bounded retries, per-call cookie jars and tolerance for the malformed
// responses news sites tend to produce.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"corpora/internal/domain"
	"corpora/internal/metrics"
)

const maxRedirects = 10

var errTooManyRedirects = errors.New("too many redirects")

type Config struct {
	Timeout           time.Duration
	UserAgent         string
	MaxBodyBytes      int64
	RequestsPerSecond float64
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration

	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the final URL after redirects.
	URL string
}

type Fetcher struct {
	cfg       Config
	transport http.RoundTripper
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Fetcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Fetcher{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("component", "fetcher"),
		metrics:   m,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Fetch GETs an HTML document. Non-HTML responses fail with
// domain.ErrNotHTML without spending retries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	return f.fetch(ctx, rawURL, headers, true)
}

// FetchFeed behaves like Fetch but accepts any media type.
func (f *Fetcher) FetchFeed(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	return f.fetch(ctx, rawURL, headers, false)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, headers http.Header, requireHTML bool) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid url %q", domain.ErrUnreachable, rawURL)
	}

	// A fresh jar per call: cookies set while following redirects are sent
	// back on the next hop and on retries, and never leak across articles.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	client := &http.Client{
		Transport: f.transport,
		Jar:       jar,
		Timeout:   f.cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	limiter := f.limiter(u.Host)

	attempts := 0
	var resp *Response
	op := func() error {
		if err := limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		r, err := f.do(ctx, client, u.String(), headers, requireHTML)
		if err != nil {
			if isTerminal(err) {
				f.metrics.FetchAttempts.WithLabelValues("terminal").Inc()
				return backoff.Permanent(err)
			}
			f.metrics.FetchAttempts.WithLabelValues("transient").Inc()
			return err
		}
		f.metrics.FetchAttempts.WithLabelValues("ok").Inc()
		resp = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialBackoff
	b.MaxInterval = f.cfg.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.cfg.MaxAttempts-1)), ctx)

	err = backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		f.logger.Warn("request failed, retrying",
			"url", rawURL,
			"attempt", attempts,
			"backoff", wait,
			"error", err,
		)
	})
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if isTerminal(err) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", domain.ErrMaxRetriesReached, rawURL, attempts, err)
}

func (f *Fetcher) do(ctx context.Context, client *http.Client, rawURL string, headers http.Header, requireHTML bool) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrUnreachable, err)
	}

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if requireHTML {
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	}
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	body, err := f.readBody(rawURL, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if requireHTML && !isHTML(resp.Header.Get("Content-Type"), body) {
		return nil, fmt.Errorf("%w: %s was %q", domain.ErrNotHTML, rawURL, resp.Header.Get("Content-Type"))
	}

	body, err = trimPreamble(body, requireHTML)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
		URL:    resp.Request.URL.String(),
	}, nil
}

// readBody returns whatever was transferred when the connection drops
// part-way. Only an empty partial read is an error. Bodies longer than
// MaxBodyBytes are cut at the limit.
func (f *Fetcher) readBody(rawURL string, r io.Reader) ([]byte, error) {
	var reader io.Reader = r
	if f.cfg.MaxBodyBytes > 0 {
		reader = io.LimitReader(r, f.cfg.MaxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		if len(body) == 0 {
			return nil, err
		}
		f.logger.Debug("partial read", "url", rawURL, "bytes", len(body), "error", err)
	}
	if f.cfg.MaxBodyBytes > 0 && int64(len(body)) > f.cfg.MaxBodyBytes {
		f.logger.Warn("response body truncated", "url", rawURL, "limit", f.cfg.MaxBodyBytes)
		body = body[:f.cfg.MaxBodyBytes]
	}
	return body, nil
}

// trimPreamble drops stray bytes (BOMs, whitespace, debug output) some
// servers emit before the document root. Feed bodies that start with a JSON
// object are left alone.
func trimPreamble(body []byte, requireHTML bool) ([]byte, error) {
	if !requireHTML {
		trimmed := bytes.TrimLeft(body, "\ufeff \t\r\n")
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return trimmed, nil
		}
	}
	i := bytes.IndexByte(body, '<')
	if i < 0 {
		return nil, fmt.Errorf("%w: no markup in response", domain.ErrDecode)
	}
	return body[i:], nil
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if f.cfg.RequestsPerSecond > 0 {
			limit = rate.Limit(f.cfg.RequestsPerSecond)
		}
		l = rate.NewLimiter(limit, 1)
		f.limiters[host] = l
	}
	return l
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return fmt.Errorf("unexpected status: %d", code)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUnreachable, code)
	}
}

func classifyTransportError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTemporary && !dnsErr.IsTimeout {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	if errors.Is(err, errTooManyRedirects) {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	return fmt.Errorf("execute request: %w", err)
}

func isTerminal(err error) bool {
	return errors.Is(err, domain.ErrUnreachable) ||
		errors.Is(err, domain.ErrNotHTML) ||
		errors.Is(err, domain.ErrDecode)
}

func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	// A malformed parameter (`text/html; charset`) still yields the media type.
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		lower := strings.ToLower(contentType)
		return strings.Contains(lower, "text/html") || strings.Contains(lower, "application/xhtml+xml")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
