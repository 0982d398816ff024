package sampler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"corpora/internal/domain"
	"corpora/internal/extract"
)

type SampleStore interface {
	GetOrCreateEvent(ctx context.Context, title string) (*domain.SampleEvent, error)
	ExistsByURL(ctx context.Context, extURL string) (bool, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
}

type Extractor interface {
	Extract(ctx context.Context, rawURL string, hints *extract.Hints) (*domain.ArticleFields, error)
}

type SampleGate interface {
	CreateSample(ctx context.Context, event domain.SampleEvent, article *domain.SampleArticle) (bool, error)
}
