package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"corpora/internal/domain"
)

// SourceLoader registers sources and their feeds.
type SourceLoader struct {
	sources   SourceStore
	feeds     FeedStore
	txManager TransactionManager
	logger    *slog.Logger
}

func NewSourceLoader(sources SourceStore, feeds FeedStore, txManager TransactionManager, logger *slog.Logger) *SourceLoader {
	return &SourceLoader{
		sources:   sources,
		feeds:     feeds,
		txManager: txManager,
		logger:    logger.With("component", "source_loader"),
	}
}

// Load creates missing sources and feeds. Existing feeds are left as they
// are. Each source is written in its own transaction.
func (l *SourceLoader) Load(ctx context.Context, sources map[string][]string) (*domain.LoadStats, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	stats := &domain.LoadStats{}
	for _, name := range names {
		urls := sources[name]

		var newSources, newFeeds int
		err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			newSources, newFeeds = 0, 0

			source, created, err := l.sources.GetOrCreate(txCtx, name)
			if err != nil {
				return fmt.Errorf("get or create source %q: %w", name, err)
			}
			if created {
				newSources++
			}

			for _, u := range urls {
				created, err := l.feeds.CreateIfMissing(txCtx, source.ID, u)
				if err != nil {
					return fmt.Errorf("create feed %q: %w", u, err)
				}
				if created {
					newFeeds++
					l.logger.Info("added feed", "source", name, "url", u)
				}
			}
			return nil
		})
		if err != nil {
			return stats, err
		}

		stats.Sources++
		stats.NewSources += newSources
		stats.Feeds += len(urls)
		stats.NewFeeds += newFeeds
	}

	l.logger.Info("sources loaded",
		"sources", stats.Sources,
		"new_sources", stats.NewSources,
		"feeds", stats.Feeds,
		"new_feeds", stats.NewFeeds,
	)

	return stats, nil
}
