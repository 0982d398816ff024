package sampler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"corpora/internal/config"
	"corpora/internal/domain"
	"corpora/internal/extract"
	"corpora/internal/metrics"
	"corpora/internal/sampler/mocks"
)

type SamplerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	store     *mocks.MockSampleStore
	extractor *mocks.MockExtractor
	gate      *mocks.MockSampleGate

	sampler *Sampler
}

func (s *SamplerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockSampleStore(s.ctrl)
	s.extractor = mocks.NewMockExtractor(s.ctrl)
	s.gate = mocks.NewMockSampleGate(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.sampler = New(s.store, s.extractor, s.gate, logger, metrics.NewNop(), config.SampleConfig{Concurrency: 1})
}

func (s *SamplerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSamplerTestSuite(t *testing.T) {
	suite.Run(t, new(SamplerTestSuite))
}

func sampleFields(url string) *domain.ArticleFields {
	now := time.Now().UTC()
	return &domain.ArticleFields{ExtURL: url, Title: url, Text: "text", PublishedAt: now, UpdatedAt: now}
}

func (s *SamplerTestSuite) TestSample_BuildsEventFromQualifyingPage() {
	ctx := context.Background()
	event := &domain.SampleEvent{ID: 5, Title: "Rescue teams reach flooded valley"}

	s.store.EXPECT().GetOrCreateEvent(ctx, event.Title).Return(event, nil)
	s.store.EXPECT().ExistsByURL(ctx, "http://a.example.com/flood").Return(false, nil)
	s.store.EXPECT().ExistsByURL(ctx, "http://b.example.com/flood").Return(false, nil)

	s.extractor.EXPECT().Extract(ctx, "http://a.example.com/flood", gomock.Any()).DoAndReturn(
		func(_ context.Context, url string, hints *extract.Hints) (*domain.ArticleFields, error) {
			s.True(hints.SkipImage)
			s.Require().NotNil(hints.Published)
			s.Equal(time.Date(2014, 7, 18, 0, 0, 0, 0, time.UTC), hints.Published.UTC())
			return sampleFields(url), nil
		},
	)
	s.extractor.EXPECT().Extract(ctx, "http://b.example.com/flood", gomock.Any()).Return(sampleFields("http://b.example.com/flood"), nil)

	s.gate.EXPECT().CreateSample(ctx, *event, gomock.Any()).Return(true, nil).Times(2)
	s.store.EXPECT().CountByEvent(ctx, int64(5)).Return(2, nil)

	stats, err := s.sampler.Sample(ctx, strings.NewReader(testDump), false)

	s.NoError(err)
	s.Equal(3, stats.Pages)
	s.Equal(2, stats.Evaluated)
	s.Equal(1, stats.Events)
	s.Equal(2, stats.Citations)
	s.Equal(2, stats.Created)
	s.Equal(0, stats.Skipped)
	s.Equal(1, stats.PeakLive)
}

func (s *SamplerTestSuite) TestSample_CitationFailuresAreIsolated() {
	ctx := context.Background()
	event := &domain.SampleEvent{ID: 5, Title: "Rescue teams reach flooded valley"}

	s.store.EXPECT().GetOrCreateEvent(ctx, event.Title).Return(event, nil)
	s.store.EXPECT().ExistsByURL(ctx, gomock.Any()).Return(false, nil).Times(2)

	s.extractor.EXPECT().Extract(ctx, "http://a.example.com/flood", gomock.Any()).DoAndReturn(
		func(context.Context, string, *extract.Hints) (*domain.ArticleFields, error) {
			panic("unexpected markup")
		},
	)
	s.extractor.EXPECT().Extract(ctx, "http://b.example.com/flood", gomock.Any()).Return(sampleFields("http://b.example.com/flood"), nil)
	s.gate.EXPECT().CreateSample(ctx, *event, gomock.Any()).Return(true, nil)
	s.store.EXPECT().CountByEvent(ctx, int64(5)).Return(1, nil)

	stats, err := s.sampler.Sample(ctx, strings.NewReader(testDump), false)

	s.NoError(err)
	s.Equal(1, stats.Created)
	s.Equal(1, stats.Skipped)
}

func (s *SamplerTestSuite) TestSample_SkipsKnownCitations() {
	ctx := context.Background()
	event := &domain.SampleEvent{ID: 5, Title: "Rescue teams reach flooded valley"}

	s.store.EXPECT().GetOrCreateEvent(ctx, event.Title).Return(event, nil)
	s.store.EXPECT().ExistsByURL(ctx, gomock.Any()).Return(true, nil).Times(2)
	s.store.EXPECT().CountByEvent(ctx, int64(5)).Return(2, nil)

	stats, err := s.sampler.Sample(ctx, strings.NewReader(testDump), false)

	s.NoError(err)
	s.Equal(0, stats.Created)
	s.Equal(2, stats.Skipped)
}

func (s *SamplerTestSuite) TestSample_EventStoreErrorSkipsPage() {
	ctx := context.Background()

	s.store.EXPECT().GetOrCreateEvent(ctx, gomock.Any()).Return(nil, errors.New("db down"))

	stats, err := s.sampler.Sample(ctx, strings.NewReader(testDump), false)

	s.NoError(err)
	s.Equal(1, stats.Events)
	s.Equal(2, stats.Skipped)
}

func (s *SamplerTestSuite) TestSample_PreviewTouchesNothing() {
	stats, err := s.sampler.Sample(context.Background(), strings.NewReader(testDump), true)

	s.NoError(err)
	s.Equal(1, stats.Events)
	s.Equal(2, stats.Citations)
	s.Equal(0, stats.Created)
}

func (s *SamplerTestSuite) TestSample_Canceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := s.sampler.Sample(ctx, strings.NewReader(testDump), false)

	s.ErrorIs(err, context.Canceled)
	s.Equal(0, stats.Pages)
}

func (s *SamplerTestSuite) TestSampleFile_Gzip() {
	path := filepath.Join(s.T().TempDir(), "enwikinews-pages-articles.xml.gz")

	f, err := os.Create(path)
	s.Require().NoError(err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testDump))
	s.Require().NoError(err)
	s.Require().NoError(gz.Close())
	s.Require().NoError(f.Close())

	stats, err := s.sampler.SampleFile(context.Background(), path, true)

	s.NoError(err)
	s.Equal(3, stats.Pages)
	s.Equal(1, stats.Events)
}

func (s *SamplerTestSuite) TestSampleFile_Missing() {
	_, err := s.sampler.SampleFile(context.Background(), filepath.Join(s.T().TempDir(), "missing.xml"), true)

	s.Error(err)
}

// TestSample_BoundedMemory streams a dump far larger than any single page
// and checks that only one page is ever held.
func TestSample_BoundedMemory(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.8/">`)
	for i := 0; i < 2000; i++ {
		b.WriteString(`<page><title>Page</title><ns>0</ns><revision><text>no sources here</text></revision></page>`)
	}
	b.WriteString(`</mediawiki>`)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	sm := New(nil, nil, nil, logger, metrics.NewNop(), config.SampleConfig{})

	stats, err := sm.Sample(context.Background(), strings.NewReader(b.String()), false)

	require.NoError(t, err)
	assert.Equal(t, 2000, stats.Pages)
	assert.Equal(t, 1, stats.PeakLive)
}
