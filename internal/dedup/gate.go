// Package dedup decides whether an extracted article is new and writes it in
// the same step, so two workers cannot both create the same record.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"corpora/internal/domain"
)

//go:generate mockgen -source=gate.go -destination=mocks/mocks.go -package=mocks

type ArticleStore interface {
	ExistsByURL(ctx context.Context, extURL string) (bool, error)
	ExistsByTitleAndSource(ctx context.Context, title string, sourceID int64) (bool, error)
	Insert(ctx context.Context, article *domain.Article) (bool, error)
}

type SampleStore interface {
	ExistsByURL(ctx context.Context, extURL string) (bool, error)
	ExistsByTitleAndEvent(ctx context.Context, title string, eventID int64) (bool, error)
	Insert(ctx context.Context, article *domain.SampleArticle) (bool, error)
}

type Gate struct {
	articles ArticleStore
	samples  SampleStore
	logger   *slog.Logger

	sourceLocks keyedMutex
	eventLocks  keyedMutex
}

func NewGate(articles ArticleStore, samples SampleStore, logger *slog.Logger) *Gate {
	return &Gate{
		articles: articles,
		samples:  samples,
		logger:   logger.With("component", "dedup"),
	}
}

// ShouldCreateArticle reports whether no article with the same URL exists and
// no feed of sourceID already carries an article with the same title.
func (g *Gate) ShouldCreateArticle(ctx context.Context, extURL, title string, sourceID int64) (bool, error) {
	exists, err := g.articles.ExistsByURL(ctx, extURL)
	if err != nil {
		return false, fmt.Errorf("check article url: %w", err)
	}
	if exists {
		return false, nil
	}

	exists, err = g.articles.ExistsByTitleAndSource(ctx, title, sourceID)
	if err != nil {
		return false, fmt.Errorf("check article title: %w", err)
	}
	if exists {
		g.logger.Debug("duplicate title in source", "url", extURL, "title", title, "source_id", sourceID)
		return false, nil
	}
	return true, nil
}

func (g *Gate) ShouldCreateSample(ctx context.Context, extURL, title string, eventID int64) (bool, error) {
	exists, err := g.samples.ExistsByURL(ctx, extURL)
	if err != nil {
		return false, fmt.Errorf("check sample url: %w", err)
	}
	if exists {
		return false, nil
	}

	exists, err = g.samples.ExistsByTitleAndEvent(ctx, title, eventID)
	if err != nil {
		return false, fmt.Errorf("check sample title: %w", err)
	}
	if exists {
		g.logger.Debug("duplicate title in event", "url", extURL, "title", title, "event_id", eventID)
		return false, nil
	}
	return true, nil
}

// CreateArticle inserts article under feed if the gate allows it. created is
// false when the article was a duplicate.
func (g *Gate) CreateArticle(ctx context.Context, feed domain.Feed, article *domain.Article) (bool, error) {
	unlock := g.sourceLocks.lock(feed.SourceID)
	defer unlock()

	ok, err := g.ShouldCreateArticle(ctx, article.ExtURL, article.Title, feed.SourceID)
	if err != nil || !ok {
		return false, err
	}

	article.FeedID = feed.ID
	created, err := g.articles.Insert(ctx, article)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}
	return created, nil
}

func (g *Gate) CreateSample(ctx context.Context, event domain.SampleEvent, article *domain.SampleArticle) (bool, error) {
	unlock := g.eventLocks.lock(event.ID)
	defer unlock()

	ok, err := g.ShouldCreateSample(ctx, article.ExtURL, article.Title, event.ID)
	if err != nil || !ok {
		return false, err
	}

	article.EventID = event.ID
	created, err := g.samples.Insert(ctx, article)
	if err != nil {
		return false, fmt.Errorf("insert sample: %w", err)
	}
	return created, nil
}

// keyedMutex serialises callers sharing a key. Entries are dropped once no
// caller holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
