package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"corpora/internal/domain"
	"corpora/internal/service/mocks"
)

type SourceLoaderTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	sources   *mocks.MockSourceStore
	feeds     *mocks.MockFeedStore
	txManager *mocks.MockTransactionManager

	loader *SourceLoader
}

func (s *SourceLoaderTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sources = mocks.NewMockSourceStore(s.ctrl)
	s.feeds = mocks.NewMockFeedStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.loader = NewSourceLoader(s.sources, s.feeds, s.txManager, logger)

	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
}

func (s *SourceLoaderTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSourceLoaderTestSuite(t *testing.T) {
	suite.Run(t, new(SourceLoaderTestSuite))
}

func (s *SourceLoaderTestSuite) TestLoad_CreatesMissing() {
	ctx := context.Background()

	s.sources.EXPECT().GetOrCreate(ctx, "Example").Return(&domain.Source{ID: 1, Name: "Example"}, true, nil)
	s.feeds.EXPECT().CreateIfMissing(ctx, int64(1), "http://example.com/world.rss").Return(true, nil)
	s.feeds.EXPECT().CreateIfMissing(ctx, int64(1), "http://example.com/politics.rss").Return(false, nil)

	s.sources.EXPECT().GetOrCreate(ctx, "Other").Return(&domain.Source{ID: 2, Name: "Other"}, false, nil)
	s.feeds.EXPECT().CreateIfMissing(ctx, int64(2), "http://other.example.com/rss").Return(false, nil)

	stats, err := s.loader.Load(ctx, map[string][]string{
		"Example": {"http://example.com/world.rss", "http://example.com/politics.rss"},
		"Other":   {"http://other.example.com/rss"},
	})

	s.NoError(err)
	s.Equal(&domain.LoadStats{Sources: 2, NewSources: 1, Feeds: 3, NewFeeds: 1}, stats)
}

func (s *SourceLoaderTestSuite) TestLoad_StoreError() {
	ctx := context.Background()

	s.sources.EXPECT().GetOrCreate(ctx, "Example").Return(nil, false, errors.New("db down"))

	_, err := s.loader.Load(ctx, map[string][]string{"Example": {"http://example.com/world.rss"}})

	s.Error(err)
}

func (s *SourceLoaderTestSuite) TestLoad_RolledBackSourceIsNotCounted() {
	ctx := context.Background()

	s.sources.EXPECT().GetOrCreate(ctx, "Broken").Return(&domain.Source{ID: 1, Name: "Broken"}, true, nil)
	s.feeds.EXPECT().CreateIfMissing(ctx, int64(1), "http://broken.example.com/a.rss").Return(true, nil)
	s.feeds.EXPECT().CreateIfMissing(ctx, int64(1), "http://broken.example.com/b.rss").Return(false, errors.New("db down"))

	stats, err := s.loader.Load(ctx, map[string][]string{
		"Broken": {"http://broken.example.com/a.rss", "http://broken.example.com/b.rss"},
	})

	s.Error(err)
	s.Equal(&domain.LoadStats{}, stats)
}
