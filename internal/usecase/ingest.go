package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/feed"
	"NewsOfTheWorld/internal/ports"
)

// Ingestor coordinates one ingestion run: fetch every enabled feed,
// normalize entries, deduplicate by fingerprint, persist new articles, and
// keep per-source health records current.
type Ingestor struct {
	fetcher    ports.FeedFetcher
	articles   ports.ArticleRepository
	health     ports.FeedHealthRepository
	normalizer *feed.Normalizer
	settings   config.ParserSettings
	logger     *slog.Logger
}

// NewIngestor wires the ingestion collaborators.
func NewIngestor(
	fetcher ports.FeedFetcher,
	articles ports.ArticleRepository,
	health ports.FeedHealthRepository,
	normalizer *feed.Normalizer,
	settings config.ParserSettings,
	logger *slog.Logger,
) *Ingestor {
	return &Ingestor{
		fetcher:    fetcher,
		articles:   articles,
		health:     health,
		normalizer: normalizer,
		settings:   settings,
		logger:     logger,
	}
}

// IngestAll processes every enabled feed in configuration order, with a
// courtesy delay between sources. A failing source never stops the run.
func (i *Ingestor) IngestAll(ctx context.Context, feeds []config.FeedConfig) (domain.RunStats, error) {
	var stats domain.RunStats

	for idx, source := range feeds {
		if idx > 0 {
			if err := i.throttle(ctx); err != nil {
				return stats, err
			}
		}

		result := i.IngestSource(ctx, source)
		stats.Add(result)
	}

	i.logger.Info("ingestion run finished",
		"sources", stats.Sources,
		"processed", stats.Processed,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors,
	)
	i.reportUnhealthyFeeds(ctx)

	return stats, nil
}

// reportUnhealthyFeeds surfaces sources whose last attempt failed, so a
// silently dead feed shows up in every run report instead of only in the
// run that broke it.
func (i *Ingestor) reportUnhealthyFeeds(ctx context.Context) {
	records, err := i.health.List(ctx)
	if err != nil {
		i.logger.Warn("failed to list feed status", "error", err)
		return
	}
	for _, record := range records {
		if record.LastError == "" {
			continue
		}
		i.logger.Warn("feed unhealthy",
			"feed", record.SourceName,
			"lastError", record.LastError,
			"lastSuccessAt", record.LastSuccessAt,
		)
	}
}

// IngestSource ingests one feed. All failures are absorbed into the result
// counters; the run report is the caller's view of what went wrong.
func (i *Ingestor) IngestSource(ctx context.Context, source config.FeedConfig) domain.IngestResult {
	i.logger.Info("fetching feed", "feed", source.Name, "url", source.URL)

	fetched, err := i.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		i.recordFailure(ctx, source, fmt.Sprintf("fetch failed: %v", err))
		return domain.IngestResult{Errors: 1}
	}

	if fetched.StatusCode >= 400 {
		i.recordFailure(ctx, source, fmt.Sprintf("HTTP error %d fetching feed", fetched.StatusCode))
		return domain.IngestResult{Errors: 1}
	}

	if fetched.Malformed {
		if len(fetched.Entries) == 0 {
			i.recordFailure(ctx, source, fmt.Sprintf("malformed feed: %s", fetched.ParseError))
			return domain.IngestResult{Errors: 1}
		}
		// Partial parse; keep what survived.
		i.logger.Warn("feed malformed, processing surviving entries",
			"feed", source.Name, "entries", len(fetched.Entries), "error", fetched.ParseError)
	}

	entries := fetched.Entries
	if max := i.settings.MaxArticlesPerFeed; max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	var result domain.IngestResult
	for _, entry := range entries {
		switch err := i.admit(ctx, entry, source); {
		case err == nil:
			result.Processed++
		case err == domain.ErrDuplicateArticle:
			result.Duplicates++
		default:
			result.Errors++
			i.logger.Warn("failed to process entry", "feed", source.Name, "link", entry.Link, "error", err)
		}
	}

	i.recordSuccess(ctx, source, result.Processed)

	i.logger.Info("feed ingested",
		"feed", source.Name,
		"processed", result.Processed,
		"duplicates", result.Duplicates,
		"errors", result.Errors,
	)

	return result
}

// admit normalizes one entry and persists it unless the fingerprint is
// already known. The existence pre-check keeps the common duplicate path
// cheap; the unique index still backstops concurrent inserts.
func (i *Ingestor) admit(ctx context.Context, entry domain.FeedEntry, source config.FeedConfig) error {
	candidate := i.normalizer.Normalize(entry, source)
	fingerprint := feed.Fingerprint(candidate)

	exists, err := i.articles.ExistsByFingerprint(ctx, fingerprint)
	if err != nil {
		return fmt.Errorf("check fingerprint: %w", err)
	}
	if exists {
		return domain.ErrDuplicateArticle
	}

	article := domain.Article{
		SourceName:  candidate.SourceName,
		Headline:    candidate.Headline,
		Summary:     candidate.Summary,
		Content:     candidate.Content,
		Link:        candidate.Link,
		Language:    candidate.Language,
		Category:    candidate.SourceCategory,
		Country:     candidate.SourceCountry,
		Fingerprint: fingerprint,
		PublishedAt: candidate.PublishedAt,
	}

	return i.articles.Save(ctx, &article)
}

// Health bookkeeping is best effort; a status write failure never affects
// the ingestion outcome.

func (i *Ingestor) recordSuccess(ctx context.Context, source config.FeedConfig, newArticles int) {
	if err := i.health.RecordSuccess(ctx, source.Name, source.URL, newArticles); err != nil {
		i.logger.Warn("failed to record feed success", "feed", source.Name, "error", err)
	}
}

func (i *Ingestor) recordFailure(ctx context.Context, source config.FeedConfig, message string) {
	i.logger.Error("feed ingestion failed", "feed", source.Name, "error", message)
	if err := i.health.RecordFailure(ctx, source.Name, source.URL, message); err != nil {
		i.logger.Warn("failed to record feed failure", "feed", source.Name, "error", err)
	}
}

func (i *Ingestor) throttle(ctx context.Context) error {
	delay := i.settings.Delay()
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
