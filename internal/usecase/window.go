package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

// WindowSource reports which timestamp column selected the window.
type WindowSource string

const (
	// WindowByIngested is the primary selection, by ingestion time.
	WindowByIngested WindowSource = "ingested"
	// WindowByPublished is the fallback when ingestion time finds nothing.
	WindowByPublished WindowSource = "published"
)

// WindowSelector picks the articles belonging to a summarization window.
// The window is a half-open calendar-date interval: lookbackDays whole
// days ending the day before the reference date.
type WindowSelector struct {
	articles ports.ArticleRepository
	logger   *slog.Logger
}

// NewWindowSelector wires the article repository.
func NewWindowSelector(articles ports.ArticleRepository, logger *slog.Logger) *WindowSelector {
	return &WindowSelector{articles: articles, logger: logger}
}

// Select returns the window's articles newest first, together with which
// timestamp chose them. Ingestion time is authoritative; publication time
// is only consulted when the primary selection is empty, which happens for
// backfilled archives ingested long after publication.
func (w *WindowSelector) Select(ctx context.Context, reference time.Time, lookbackDays int, filter domain.ArticleFilter) ([]domain.Article, WindowSource, error) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	to := reference
	from := reference.AddDate(0, 0, -lookbackDays)

	articles, err := w.articles.FindIngestedBetween(ctx, from, to, filter)
	if err != nil {
		return nil, WindowByIngested, fmt.Errorf("select by ingestion time: %w", err)
	}
	if len(articles) > 0 {
		return articles, WindowByIngested, nil
	}

	articles, err = w.articles.FindPublishedBetween(ctx, from, to, filter)
	if err != nil {
		return nil, WindowByPublished, fmt.Errorf("select by publication time: %w", err)
	}
	if len(articles) > 0 {
		w.logger.Info("window selected via publication time fallback",
			"from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly), "articles", len(articles))
	}

	return articles, WindowByPublished, nil
}
