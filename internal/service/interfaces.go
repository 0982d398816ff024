package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"net/http"

	"corpora/internal/domain"
	"corpora/internal/extract"
	"corpora/internal/fetch"
)

type SourceStore interface {
	GetOrCreate(ctx context.Context, name string) (*domain.Source, bool, error)
}

type FeedStore interface {
	List(ctx context.Context) ([]domain.Feed, error)
	CreateIfMissing(ctx context.Context, sourceID int64, extURL string) (bool, error)
	IncrementErrors(ctx context.Context, feedID int64) error
}

type ArticleStore interface {
	ExistsByURL(ctx context.Context, extURL string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type FeedFetcher interface {
	FetchFeed(ctx context.Context, rawURL string, headers http.Header) (*fetch.Response, error)
}

type Extractor interface {
	Extract(ctx context.Context, rawURL string, hints *extract.Hints) (*domain.ArticleFields, error)
}

type ArticleGate interface {
	CreateArticle(ctx context.Context, feed domain.Feed, article *domain.Article) (bool, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article) error
}

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}
