package sampler

import (
	"bufio"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"corpora/internal/config"
	"corpora/internal/domain"
	"corpora/internal/extract"
	"corpora/internal/metrics"
)

type Sampler struct {
	store     SampleStore
	extractor Extractor
	gate      SampleGate
	logger    *slog.Logger
	metrics   *metrics.Metrics
	config    config.SampleConfig
}

func New(store SampleStore, extractor Extractor, gate SampleGate, logger *slog.Logger, m *metrics.Metrics, cfg config.SampleConfig) *Sampler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if len(cfg.DigestPatterns) == 0 {
		cfg.DigestPatterns = []string{DefaultDigestPattern}
	}
	return &Sampler{
		store:     store,
		extractor: extractor,
		gate:      gate,
		logger:    logger.With("component", "sampler"),
		metrics:   m,
		config:    cfg,
	}
}

// SampleFile opens a dump, decompressing .bz2 and .gz files on the fly.
func (s *Sampler) SampleFile(ctx context.Context, path string, preview bool) (*domain.SampleStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	switch {
	case strings.HasSuffix(path, ".bz2"):
		r = bzip2.NewReader(r)
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip dump: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	s.logger.Info("sampling from dump", "path", path, "preview", preview)
	return s.Sample(ctx, r, preview)
}

// Sample reads every page of the dump in r. In preview mode qualifying
// events are only counted; nothing is fetched or stored.
func (s *Sampler) Sample(ctx context.Context, r io.Reader, preview bool) (*domain.SampleStats, error) {
	start := time.Now()
	stats := &domain.SampleStats{}
	tracker := &Tracker{}
	reader := NewReader(r, tracker)

	finish := func() {
		stats.PeakLive = tracker.Peak()
		stats.Duration = time.Since(start)
	}

	for {
		if err := ctx.Err(); err != nil {
			finish()
			return stats, err
		}

		page, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			finish()
			return stats, err
		}

		stats.Pages++
		s.metrics.DumpPages.Inc()
		if page.NS == 0 {
			stats.Evaluated++
		}

		if candidate, ok := Evaluate(page, s.config.DigestPatterns); ok {
			stats.Events++
			stats.Citations += len(candidate.Citations)
			if !preview {
				created, skipped := s.buildEvent(ctx, candidate)
				stats.Created += created
				stats.Skipped += skipped
			}
		}

		reader.Release()
	}

	finish()
	s.logger.Info("sampling complete",
		"pages", stats.Pages,
		"evaluated", stats.Evaluated,
		"events", stats.Events,
		"articles", stats.Citations,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"preview", preview,
		"duration", stats.Duration,
	)

	return stats, nil
}

// buildEvent materialises the candidate's citations under its event. A
// failing citation never affects its siblings.
func (s *Sampler) buildEvent(ctx context.Context, c *Candidate) (created, skipped int) {
	logger := s.logger.With("event", c.Title)
	logger.Info("building sample event", "sources", len(c.Citations))

	event, err := s.store.GetOrCreateEvent(ctx, c.Title)
	if err != nil {
		logger.Error("failed to get or create event", "error", err)
		return 0, len(c.Citations)
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.config.Concurrency)

	for _, citation := range c.Citations {
		g.Go(func() error {
			ok := s.sampleCitation(ctx, *event, citation, logger)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			} else {
				skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	if n, err := s.store.CountByEvent(ctx, event.ID); err == nil {
		logger.Info("sample event built", "created", created, "articles", n)
	}
	return created, skipped
}

func (s *Sampler) sampleCitation(ctx context.Context, event domain.SampleEvent, c domain.Citation, logger *slog.Logger) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("panic while sampling citation", "url", c.URL, "panic", p)
			ok = false
		}
	}()

	if ctx.Err() != nil {
		return false
	}

	exists, err := s.store.ExistsByURL(ctx, c.URL)
	if err != nil {
		logger.Warn("failed to check sample", "url", c.URL, "error", err)
		return false
	}
	if exists {
		return false
	}

	hints := &extract.Hints{SkipImage: true}
	if published, err := extract.ParseDate(c.Date); err == nil {
		hints.Published = &published
	} else {
		logger.Debug("unparseable citation date", "url", c.URL, "date", c.Date)
	}

	fields, err := s.extractor.Extract(ctx, c.URL, hints)
	if err != nil {
		logger.Debug("citation skipped", "url", c.URL, "outcome", domain.Classify(err).String())
		return false
	}

	created, err := s.gate.CreateSample(ctx, event, &domain.SampleArticle{ArticleFields: *fields})
	if err != nil {
		logger.Warn("failed to save sample", "url", c.URL, "error", err)
		return false
	}
	if created {
		s.metrics.ArticlesCreated.WithLabelValues("sample").Inc()
	}
	return created
}
