package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/feed"
	"NewsOfTheWorld/internal/infrastructure/llm"
	"NewsOfTheWorld/internal/infrastructure/rss"
	"NewsOfTheWorld/internal/infrastructure/scheduler"
	"NewsOfTheWorld/internal/infrastructure/storage"
	"NewsOfTheWorld/internal/infrastructure/telegram"
	"NewsOfTheWorld/internal/logging"
	"NewsOfTheWorld/internal/usecase"
)

// Application wires configuration to use cases and owns the shared
// resources, most importantly the database pool.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool

	ingestor   *usecase.Ingestor
	aggregator *usecase.SummaryAggregator
	digest     *usecase.DigestSender
	scheduler  *scheduler.CronScheduler
}

// New builds a runnable application: it connects to the database, applies
// the schema, and wires every adapter and use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	pool, err := storage.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := storage.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	articles := storage.NewArticleRepository(pool, baseLogger.With("component", "storage.articles"))
	health := storage.NewFeedHealthRepository(pool, baseLogger.With("component", "storage.health"))
	summaries := storage.NewSummaryRepository(pool, baseLogger.With("component", "storage.summaries"))
	interactions := storage.NewInteractionRepository(pool, baseLogger.With("component", "storage.interactions"))

	normalizer := feed.NewNormalizer(feed.NewLanguageDetector())
	fetcher := rss.NewFetcher(cfg.Settings, baseLogger.With("component", "fetcher"))
	summarizer := llm.NewGrokSummarizer(cfg.Grok, cfg.Summary.Limits, interactions, baseLogger.With("component", "grok"))
	notifier := telegram.NewNotifier(cfg.Telegram, baseLogger.With("component", "telegram"))

	window := usecase.NewWindowSelector(articles, baseLogger.With("component", "window"))

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		pool:       pool,
		ingestor:   usecase.NewIngestor(fetcher, articles, health, normalizer, cfg.Settings, baseLogger.With("component", "ingest")),
		aggregator: usecase.NewSummaryAggregator(window, summaries, summarizer, cfg.Summary, baseLogger.With("component", "summary")),
		digest:     usecase.NewDigestSender(summaries, notifier, baseLogger.With("component", "digest")),
		scheduler:  scheduler.NewCronScheduler(cfg.Scheduler.Location(), baseLogger.With("component", "scheduler")),
	}, nil
}

// Close releases shared resources.
func (a *Application) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// RunIngest executes one full ingestion pass over the enabled feeds.
func (a *Application) RunIngest(ctx context.Context) error {
	_, err := a.ingestor.IngestAll(ctx, a.cfg.EnabledFeeds())
	return err
}

// RunSummarize builds summaries for the window ending at reference (nil
// means yesterday). A scope or an explicit lookback selects one single
// summary; otherwise the full daily set is generated.
func (a *Application) RunSummarize(ctx context.Context, reference *time.Time, scope domain.SummaryScope, lookbackDays int) error {
	single := scope.Category != nil || scope.Country != nil || lookbackDays >= 1

	if !single {
		return a.aggregator.BuildScopedSummaries(ctx, reference, a.cfg.EnabledFeeds())
	}

	_, err := a.aggregator.BuildSummary(ctx, reference, scope, lookbackDays)
	if err == domain.ErrSummaryExists {
		a.logger.Info("summary already exists")
		return nil
	}
	return err
}

// RunDigest delivers the summaries of one window end date (nil means
// yesterday) to the notification channel.
func (a *Application) RunDigest(ctx context.Context, reference *time.Time) error {
	return a.digest.SendDaily(ctx, reference)
}

// Serve runs the long-lived scheduled mode: periodic ingestion, the
// nightly summary run, and the morning digest, until the context is
// cancelled.
func (a *Application) Serve(ctx context.Context) error {
	jobs := []struct {
		name       string
		expression string
		run        func(context.Context) error
	}{
		{"ingest", a.cfg.Scheduler.IngestCron, a.RunIngest},
		{"summarize", a.cfg.Scheduler.SummarizeCron, func(ctx context.Context) error {
			return a.aggregator.BuildScopedSummaries(ctx, nil, a.cfg.EnabledFeeds())
		}},
		{"digest", a.cfg.Scheduler.DigestCron, func(ctx context.Context) error {
			return a.digest.SendDaily(ctx, nil)
		}},
	}

	for _, job := range jobs {
		job := job
		err := a.scheduler.Schedule(job.expression, func(time.Time) {
			a.logger.Info("scheduled job starting", "job", job.name)
			if err := job.run(ctx); err != nil {
				a.logger.Error("scheduled job failed", "job", job.name, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}
