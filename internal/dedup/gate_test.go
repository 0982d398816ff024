package dedup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"corpora/internal/dedup/mocks"
	"corpora/internal/domain"
)

type GateTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	articles *mocks.MockArticleStore
	samples  *mocks.MockSampleStore
	gate     *Gate
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (s *GateTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.samples = mocks.NewMockSampleStore(s.ctrl)
	s.gate = NewGate(s.articles, s.samples, slog.Default())
}

func (s *GateTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GateTestSuite) TestShouldCreateArticle_URLExists() {
	ctx := context.Background()
	s.articles.EXPECT().ExistsByURL(ctx, "http://example.com/a").Return(true, nil)

	ok, err := s.gate.ShouldCreateArticle(ctx, "http://example.com/a", "Title", 1)

	s.NoError(err)
	s.False(ok)
}

func (s *GateTestSuite) TestShouldCreateArticle_TitleExistsInSource() {
	ctx := context.Background()
	s.articles.EXPECT().ExistsByURL(ctx, "http://example.com/b").Return(false, nil)
	s.articles.EXPECT().ExistsByTitleAndSource(ctx, "Title", int64(1)).Return(true, nil)

	ok, err := s.gate.ShouldCreateArticle(ctx, "http://example.com/b", "Title", 1)

	s.NoError(err)
	s.False(ok)
}

func (s *GateTestSuite) TestShouldCreateArticle_New() {
	ctx := context.Background()
	s.articles.EXPECT().ExistsByURL(ctx, "http://example.com/c").Return(false, nil)
	s.articles.EXPECT().ExistsByTitleAndSource(ctx, "Title", int64(2)).Return(false, nil)

	ok, err := s.gate.ShouldCreateArticle(ctx, "http://example.com/c", "Title", 2)

	s.NoError(err)
	s.True(ok)
}

func (s *GateTestSuite) TestShouldCreateArticle_StoreError() {
	ctx := context.Background()
	s.articles.EXPECT().ExistsByURL(ctx, gomock.Any()).Return(false, errors.New("connection lost"))

	ok, err := s.gate.ShouldCreateArticle(ctx, "http://example.com/c", "Title", 2)

	s.Error(err)
	s.False(ok)
}

func (s *GateTestSuite) TestCreateArticle_AttachesFeed() {
	ctx := context.Background()
	feed := domain.Feed{ID: 7, SourceID: 3}
	article := &domain.Article{ArticleFields: domain.ArticleFields{ExtURL: "http://example.com/d", Title: "D"}}

	s.articles.EXPECT().ExistsByURL(ctx, "http://example.com/d").Return(false, nil)
	s.articles.EXPECT().ExistsByTitleAndSource(ctx, "D", int64(3)).Return(false, nil)
	s.articles.EXPECT().Insert(ctx, article).DoAndReturn(func(_ context.Context, a *domain.Article) (bool, error) {
		s.Equal(int64(7), a.FeedID)
		return true, nil
	})

	created, err := s.gate.CreateArticle(ctx, feed, article)

	s.NoError(err)
	s.True(created)
}

func (s *GateTestSuite) TestCreateArticle_DuplicateSkipsInsert() {
	ctx := context.Background()
	article := &domain.Article{ArticleFields: domain.ArticleFields{ExtURL: "http://example.com/d", Title: "D"}}

	s.articles.EXPECT().ExistsByURL(ctx, "http://example.com/d").Return(true, nil)

	created, err := s.gate.CreateArticle(ctx, domain.Feed{ID: 7, SourceID: 3}, article)

	s.NoError(err)
	s.False(created)
}

func (s *GateTestSuite) TestShouldCreateSample_TitleExistsInEvent() {
	ctx := context.Background()
	s.samples.EXPECT().ExistsByURL(ctx, "http://example.com/s").Return(false, nil)
	s.samples.EXPECT().ExistsByTitleAndEvent(ctx, "S", int64(4)).Return(true, nil)

	ok, err := s.gate.ShouldCreateSample(ctx, "http://example.com/s", "S", 4)

	s.NoError(err)
	s.False(ok)
}

func (s *GateTestSuite) TestCreateSample_AttachesEvent() {
	ctx := context.Background()
	article := &domain.SampleArticle{ArticleFields: domain.ArticleFields{ExtURL: "http://example.com/s", Title: "S"}}

	s.samples.EXPECT().ExistsByURL(ctx, "http://example.com/s").Return(false, nil)
	s.samples.EXPECT().ExistsByTitleAndEvent(ctx, "S", int64(4)).Return(false, nil)
	s.samples.EXPECT().Insert(ctx, article).Return(true, nil)

	created, err := s.gate.CreateSample(ctx, domain.SampleEvent{ID: 4, Title: "Event"}, article)

	s.NoError(err)
	s.True(created)
	s.Equal(int64(4), article.EventID)
}

// memArticles is a check-then-act store without a unique index, so only the
// gate's locking keeps it duplicate free.
type memArticles struct {
	mu   sync.Mutex
	rows []domain.Article
	feed map[int64]int64
}

func (m *memArticles) ExistsByURL(_ context.Context, extURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.ExtURL == extURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *memArticles) ExistsByTitleAndSource(_ context.Context, title string, sourceID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Title == title && m.feed[a.FeedID] == sourceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memArticles) Insert(_ context.Context, article *domain.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	article.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *article)
	return true, nil
}

func TestCreateArticle_ConcurrentSameTitleAcrossFeeds(t *testing.T) {
	store := &memArticles{feed: map[int64]int64{1: 10, 2: 10}}
	gate := NewGate(store, nil, slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			feed := domain.Feed{ID: int64(i%2 + 1), SourceID: 10}
			article := &domain.Article{ArticleFields: domain.ArticleFields{
				ExtURL: "http://example.com/" + string(rune('a'+i)),
				Title:  "Same story",
			}}
			_, err := gate.CreateArticle(context.Background(), feed, article)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.rows, 1)
}

func TestCreateArticle_Idempotent(t *testing.T) {
	store := &memArticles{feed: map[int64]int64{1: 10}}
	gate := NewGate(store, nil, slog.Default())
	feed := domain.Feed{ID: 1, SourceID: 10}

	for i := 0; i < 3; i++ {
		article := &domain.Article{ArticleFields: domain.ArticleFields{ExtURL: "http://example.com/x", Title: "X"}}
		created, err := gate.CreateArticle(context.Background(), feed, article)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created, "run %d", i)
	}
}
