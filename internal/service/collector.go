package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"corpora/internal/config"
	"corpora/internal/domain"
	"corpora/internal/extract"
	"corpora/internal/metrics"
	"corpora/internal/normalize"
)

const NotifySubject = "Corpora collection complete."

type Collector struct {
	feeds     FeedStore
	articles  ArticleStore
	fetcher   FeedFetcher
	extractor Extractor
	gate      ArticleGate
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
	config    config.CollectConfig
}

// NewCollector wires a collector. publisher and notifier may be nil.
func NewCollector(
	feeds FeedStore,
	articles ArticleStore,
	fetcher FeedFetcher,
	extractor Extractor,
	gate ArticleGate,
	publisher Publisher,
	notifier Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	cfg config.CollectConfig,
) *Collector {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Collector{
		feeds:     feeds,
		articles:  articles,
		fetcher:   fetcher,
		extractor: extractor,
		gate:      gate,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger.With("component", "collector"),
		metrics:   m,
		config:    cfg,
	}
}

// Collect runs one pass over every registered feed. A failing feed is
// counted and skipped; only a store failure listing feeds or cancellation
// aborts the pass. Articles created before cancellation stay.
func (c *Collector) Collect(ctx context.Context) (*domain.CollectReport, error) {
	start := time.Now()

	feeds, err := c.feeds.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	c.logger.Info("starting collection", "feeds", len(feeds), "concurrency", c.config.Concurrency)

	report := &domain.CollectReport{PerFeed: make(map[string]int, len(feeds))}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.config.Concurrency)

	for _, feed := range feeds {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.collectFeed(ctx, feed)

			mu.Lock()
			defer mu.Unlock()
			report.Skipped += res.skipped
			if err != nil && ctx.Err() == nil {
				report.FailedFeeds++
				return nil
			}
			report.PerFeed[feed.ExtURL] = res.created
			report.New += res.created
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		c.logger.Warn("collection interrupted", "new", report.New, "error", err)
		return report, err
	}

	report.Total, err = c.articles.Count(ctx)
	if err != nil {
		c.logger.Error("failed to count articles", "error", err)
	}

	c.logger.Info("collection completed",
		"new", report.New,
		"failed_feeds", report.FailedFeeds,
		"skipped", report.Skipped,
		"total", report.Total,
		"duration", report.Duration,
	)

	c.notify(ctx, report)

	return report, nil
}

type feedResult struct {
	created int
	skipped int
}

func (c *Collector) collectFeed(ctx context.Context, feed domain.Feed) (feedResult, error) {
	var res feedResult
	logger := c.logger.With("feed", feed.ExtURL, "source", feed.SourceName)

	parsed, err := c.parseFeed(ctx, feed.ExtURL)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		logger.Error("error fetching feed", "error", err)
		c.metrics.FeedErrors.Inc()
		if err := c.feeds.IncrementErrors(ctx, feed.ID); err != nil {
			logger.Error("failed to record feed error", "error", err)
		}
		return res, err
	}

	logger.Debug("fetched feed", "entries", len(parsed.Items))

	for _, item := range parsed.Items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		created, err := c.collectEntry(ctx, feed, item, logger)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.skipped++
			continue
		}
		if created {
			res.created++
		}
	}

	logger.Info("feed collected", "new", res.created, "skipped", res.skipped)
	return res, nil
}

func (c *Collector) parseFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	resp, err := c.fetcher.FetchFeed(ctx, feedURL, nil)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

// collectEntry returns an error only when the entry was skipped for a reason
// worth counting. Already known URLs are not errors.
func (c *Collector) collectEntry(ctx context.Context, feed domain.Feed, item *gofeed.Item, logger *slog.Logger) (bool, error) {
	link := entryLink(item)
	if link == "" {
		return false, errors.New("entry has no link")
	}

	exists, err := c.articles.ExistsByURL(ctx, link)
	if err != nil {
		logger.Error("failed to check article", "url", link, "error", err)
		return false, err
	}
	if exists {
		return false, nil
	}

	fields, err := c.extractor.Extract(ctx, link, entryHints(item))
	if err != nil {
		if outcome := domain.Classify(err); outcome.Kind != domain.OutcomeSkip {
			logger.Error("extraction failed", "url", link, "error", err)
		}
		return false, err
	}

	article := &domain.Article{ArticleFields: *fields}
	created, err := c.gate.CreateArticle(ctx, feed, article)
	if err != nil {
		logger.Error("failed to save article", "url", article.ExtURL, "error", err)
		return false, err
	}
	if !created {
		logger.Debug("duplicate article", "url", article.ExtURL, "title", article.Title)
		return false, nil
	}

	c.metrics.ArticlesCreated.WithLabelValues("collect").Inc()

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, article); err != nil {
			logger.Warn("failed to publish article", "url", article.ExtURL, "error", err)
		}
	}

	return true, nil
}

func (c *Collector) notify(ctx context.Context, report *domain.CollectReport) {
	if c.notifier == nil {
		return
	}

	body := fmt.Sprintf("Total article count: %d\n\nResults for this pass:\n%s", report.Total, report.JSON())
	if err := c.notifier.Notify(ctx, NotifySubject, body); err != nil {
		c.logger.Error("failed to send notification", "error", err)
	}
}

func entryLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return ""
}

func entryHints(item *gofeed.Item) *extract.Hints {
	hints := &extract.Hints{
		Authors: normalize.EntryAuthors(item),
		Tags:    normalize.EntryTerms(item),
	}
	if item.Title != "" {
		title := item.Title
		hints.Title = &title
	}
	hints.Published = entryTime(item.PublishedParsed, item.Published)
	hints.Updated = entryTime(item.UpdatedParsed, item.Updated)
	return hints
}

// entryTime prefers the time gofeed parsed and falls back to the looser
// date parser for formats gofeed does not know.
func entryTime(parsed *time.Time, raw string) *time.Time {
	if parsed != nil {
		return parsed
	}
	if raw == "" {
		return nil
	}
	t, err := extract.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &t
}
