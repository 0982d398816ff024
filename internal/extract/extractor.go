// Package extract fetches an article page and turns it into article fields,
// merging in whatever the caller already knows about the entry.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"corpora/internal/domain"
	"corpora/internal/fetch"
	"corpora/internal/metrics"
)

// DefaultMinTextLength is the shortest body, in characters, accepted as an
// article.
const DefaultMinTextLength = 400

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers http.Header) (*fetch.Response, error)
}

type Config struct {
	MinTextLength int
}

type Extractor struct {
	fetcher       Fetcher
	minTextLength int
	logger        *slog.Logger
	metrics       *metrics.Metrics

	parse func(body []byte, pageURL *url.URL) (*Extracted, error)
	now   func() time.Time
	group singleflight.Group
}

func New(f Fetcher, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Extractor {
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = DefaultMinTextLength
	}
	return &Extractor{
		fetcher:       f,
		minTextLength: cfg.MinTextLength,
		logger:        logger.With("component", "extractor"),
		metrics:       m,
		parse:         parseHTML,
		now:           time.Now,
	}
}

// Extract fetches rawURL and returns the merged article fields. Skip-class
// failures (see domain.Classify) are logged here and returned so callers can
// count them without logging twice.
func (e *Extractor) Extract(ctx context.Context, rawURL string, hints *Hints) (*domain.ArticleFields, error) {
	x, err := e.page(ctx, rawURL)

	outcome := domain.Classify(err)
	e.metrics.Extractions.WithLabelValues(outcomeLabel(outcome)).Inc()
	if err != nil {
		if outcome.Kind == domain.OutcomeSkip {
			e.logger.Warn("error extracting data for url", "url", rawURL, "reason", outcome.Reason, "error", err)
		}
		return nil, err
	}

	return Merge(x, hints, rawURL, e.now()), nil
}

// page fetches and parses rawURL. Concurrent calls for the same URL share one
// download, which is detached from any single caller's cancellation; each
// caller still stops waiting when its own ctx is done.
func (e *Extractor) page(ctx context.Context, rawURL string) (*Extracted, error) {
	shared := context.WithoutCancel(ctx)
	ch := e.group.DoChan(rawURL, func() (any, error) {
		resp, err := e.fetcher.Fetch(shared, rawURL, nil)
		if err != nil {
			return nil, err
		}

		pageURL, err := url.Parse(resp.URL)
		if err != nil || resp.URL == "" {
			pageURL, _ = url.Parse(rawURL)
		}

		x, err := e.parse(resp.Body, pageURL)
		if err != nil {
			return nil, err
		}
		if err := checkLength(x.Text, e.minTextLength); err != nil {
			return nil, err
		}
		return x, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// Each caller merges into its own copy.
	cp := *res.Val.(*Extracted)
	return &cp, nil
}

func checkLength(text string, min int) error {
	if n := utf8.RuneCountInString(text); n < min {
		return fmt.Errorf("%w: %d characters, need %d", domain.ErrTooShort, n, min)
	}
	return nil
}

func outcomeLabel(o domain.Outcome) string {
	switch o.Kind {
	case domain.OutcomeOK:
		return "ok"
	case domain.OutcomeSkip:
		return o.Reason
	default:
		return "fatal"
	}
}
