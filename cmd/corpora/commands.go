package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"corpora/internal/config"
	"corpora/internal/dedup"
	"corpora/internal/domain"
	"corpora/internal/extract"
	"corpora/internal/fetch"
	"corpora/internal/publisher"
	"corpora/internal/sampler"
	"corpora/internal/scheduler"
	"corpora/internal/service"
	"corpora/internal/storage/postgres"
)

func loadSourcesCmd(a *app) *cobra.Command {
	var sourcesPath string

	cmd := &cobra.Command{
		Use:   "load_sources",
		Short: "Register sources and feeds from a sources file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := config.LoadSources(sourcesPath)
			if err != nil {
				a.logger.Error("failed to load sources", "path", sourcesPath, "error", err)
				return err
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			loader := service.NewSourceLoader(
				postgres.NewSourceStore(db),
				postgres.NewFeedStore(db),
				postgres.NewTransactionManager(db),
				a.logger,
			)

			stats, err := loader.Load(ctx, sources)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d sources (%d new) and %d feeds (%d new).\n",
				stats.Sources, stats.NewSources, stats.Feeds, stats.NewFeeds)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcesPath, "sources", "sources.json", "path to sources file (JSON or YAML)")
	return cmd
}

func collectCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch new articles from every registered feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.signalContext()
			defer cancel()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			var (
				pub      service.Publisher
				notifier service.Notifier = publisher.NewLogNotifier(a.logger, a.cfg.Notify.Recipients)
			)
			if a.cfg.RabbitMQ.URL != "" {
				rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
					URL:              a.cfg.RabbitMQ.URL,
					Exchange:         a.cfg.RabbitMQ.Exchange,
					RoutingKey:       a.cfg.RabbitMQ.RoutingKey,
					QueueName:        a.cfg.RabbitMQ.QueueName,
					NotifyRoutingKey: a.cfg.RabbitMQ.NotifyRoutingKey,
					NotifyQueue:      a.cfg.RabbitMQ.NotifyQueue,
					Recipients:       a.cfg.Notify.Recipients,
				}, a.logger)
				if err != nil {
					a.logger.Error("failed to connect to rabbitmq", "error", err)
					return err
				}
				defer rabbitMQ.Close()
				pub, notifier = rabbitMQ, rabbitMQ
			}

			articles := postgres.NewArticleStore(db)
			fetcher := a.newFetcher()
			collector := service.NewCollector(
				postgres.NewFeedStore(db),
				articles,
				fetcher,
				a.newExtractor(fetcher),
				dedup.NewGate(articles, postgres.NewSampleStore(db), a.logger),
				pub,
				notifier,
				a.logger,
				a.metrics,
				a.cfg.Collect,
			)

			printReport := func(report *domain.CollectReport) {
				fmt.Fprintln(cmd.OutOrStdout(), report.JSON())
			}

			if watch {
				sched := scheduler.NewScheduler(collector, a.cfg.Collect.Interval, a.logger)
				sched.OnReport(printReport)
				if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			report, err := collector.Collect(ctx)
			if report != nil {
				printReport(report)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and collect every collect.interval")
	return cmd
}

func sampleCmd(a *app, name string, preview bool) *cobra.Command {
	short := "Build sample events from a Wikinews pages-articles dump"
	if preview {
		short = "Count the sample events a Wikinews dump would produce"
	}

	return &cobra.Command{
		Use:   name + " <dump-path>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Please specify the path to the WikiNews pages-articles XML to sample from.")
				return cmd.Usage()
			}

			ctx, cancel := a.signalContext()
			defer cancel()

			var s *sampler.Sampler
			if preview {
				s = sampler.New(nil, nil, nil, a.logger, a.metrics, a.cfg.Sample)
			} else {
				db, err := a.openDB(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				samples := postgres.NewSampleStore(db)
				s = sampler.New(
					samples,
					a.newExtractor(a.newFetcher()),
					dedup.NewGate(postgres.NewArticleStore(db), samples, a.logger),
					a.logger,
					a.metrics,
					a.cfg.Sample,
				)
			}

			stats, err := s.SampleFile(ctx, args[0], preview)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sampled %d events and %d articles (%d created) from %d pages.\n",
				stats.Events, stats.Citations, stats.Created, stats.Pages)
			return nil
		},
	}
}

func (a *app) openDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := postgres.Open(ctx, a.cfg.Database.DSN())
	if err != nil {
		a.logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	a.logger.Info("connected to database")
	return db, nil
}

func (a *app) newFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Config{
		Timeout:           a.cfg.Fetch.Timeout,
		UserAgent:         a.cfg.Fetch.UserAgent,
		MaxBodyBytes:      a.cfg.Fetch.MaxBodyBytes,
		RequestsPerSecond: a.cfg.Fetch.RequestsPerSecond,
		MaxAttempts:       a.cfg.Fetch.Retry.MaxAttempts,
		InitialBackoff:    a.cfg.Fetch.Retry.InitialBackoff,
		MaxBackoff:        a.cfg.Fetch.Retry.MaxBackoff,
	}, a.logger, a.metrics)
}

func (a *app) newExtractor(f *fetch.Fetcher) *extract.Extractor {
	return extract.New(f, extract.Config{MinTextLength: a.cfg.Extract.MinTextLength}, a.logger, a.metrics)
}
