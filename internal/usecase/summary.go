package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/feed"
	"NewsOfTheWorld/internal/ports"
)

// SummaryAggregator builds one persisted summary per (window end date,
// category, country) triple from the articles of a summarization window.
type SummaryAggregator struct {
	window     *WindowSelector
	summaries  ports.SummaryRepository
	summarizer ports.Summarizer
	cfg        config.SummaryConfig
	logger     *slog.Logger
}

// NewSummaryAggregator wires the summarization collaborators.
func NewSummaryAggregator(
	window *WindowSelector,
	summaries ports.SummaryRepository,
	summarizer ports.Summarizer,
	cfg config.SummaryConfig,
	logger *slog.Logger,
) *SummaryAggregator {
	return &SummaryAggregator{
		window:     window,
		summaries:  summaries,
		summarizer: summarizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// BuildSummary generates and persists the summary for one scope. A nil
// reference defaults to the day before now, so the scheduled morning run
// summarizes yesterday. The two skip outcomes are distinguishable: an
// empty window returns (nil, nil), an already-summarized triple returns
// domain.ErrSummaryExists.
func (a *SummaryAggregator) BuildSummary(ctx context.Context, reference *time.Time, scope domain.SummaryScope, lookbackDays int) (*domain.Summary, error) {
	if lookbackDays < 1 {
		lookbackDays = a.cfg.LookbackDays
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	ref := time.Now().UTC().AddDate(0, 0, -1)
	if reference != nil {
		ref = reference.UTC()
	}
	// Windows are calendar-date intervals; the end date is the reference
	// day at UTC midnight, and the window covers the lookback days up to
	// and including it.
	windowEnd := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := a.summaries.Exists(ctx, windowEnd, scope)
	if err != nil {
		return nil, fmt.Errorf("check summary existence: %w", err)
	}
	if exists {
		return nil, domain.ErrSummaryExists
	}

	articles, via, err := a.window.Select(ctx, windowEnd.AddDate(0, 0, 1), lookbackDays, scope.Filter())
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		a.logger.Info("no articles in window, skipping summary",
			"windowEnd", windowEnd.Format(time.DateOnly), "scope", scopeLabel(scope))
		return nil, nil
	}

	a.logger.Info("summarizing window",
		"windowEnd", windowEnd.Format(time.DateOnly),
		"scope", scopeLabel(scope),
		"articles", len(articles),
		"via", string(via),
	)

	doc, err := a.summarizer.Summarize(ctx, project(articles))
	if err != nil {
		return nil, fmt.Errorf("summarize window: %w", err)
	}

	summary := domain.Summary{
		WindowEndDate:   windowEnd,
		Category:        scope.Category,
		Country:         scope.Country,
		TextSummary:     doc.TextSummary,
		DetailedSummary: doc.DetailedSummary,
		MainEvents:      clampMap(doc.MainEvents, a.cfg.Limits.MainEvents),
		KeyThemes:       clampMap(doc.KeyThemes, a.cfg.Limits.KeyThemes),
		ImpactedRegions: doc.ImpactedRegions,
		Timeline:        doc.Timeline,
		TopArticles:     clampArticles(doc.TopArticles, a.cfg.Limits.TopArticles),
		ArticlesCount:   len(articles),
		GeneratedAt:     time.Now().UTC(),
		ModelName:       a.summarizer.ModelName(),
		Raw:             doc.Raw,
	}

	if err := a.summaries.Save(ctx, &summary); err != nil {
		if err == domain.ErrDuplicateSummary {
			// A concurrent run won the insert race.
			return nil, domain.ErrSummaryExists
		}
		return nil, fmt.Errorf("save summary: %w", err)
	}

	return &summary, nil
}

// BuildScopedSummaries runs the daily aggregation: the overall summary
// first, then one per configured category and one per configured country.
// A failing scope is logged and skipped so the rest still generate.
func (a *SummaryAggregator) BuildScopedSummaries(ctx context.Context, reference *time.Time, feeds []config.FeedConfig) error {
	scopes := []domain.SummaryScope{{}}
	for _, category := range distinctValues(feeds, func(f config.FeedConfig) string { return f.Category }) {
		c := category
		scopes = append(scopes, domain.SummaryScope{Category: &c})
	}
	for _, country := range distinctValues(feeds, func(f config.FeedConfig) string { return f.Country }) {
		c := country
		scopes = append(scopes, domain.SummaryScope{Country: &c})
	}

	var failed int
	for _, scope := range scopes {
		_, err := a.BuildSummary(ctx, reference, scope, a.cfg.LookbackDays)
		switch {
		case err == nil:
		case err == domain.ErrSummaryExists:
			a.logger.Info("summary already exists, skipping", "scope", scopeLabel(scope))
		default:
			failed++
			a.logger.Error("failed to build summary", "scope", scopeLabel(scope), "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("summary run finished with %d failed scopes", failed)
	}
	return nil
}

// project reduces articles to the summarizer input shape, preferring full
// content over the feed summary and stripping markup either way.
func project(articles []domain.Article) []domain.SummaryInput {
	inputs := make([]domain.SummaryInput, 0, len(articles))
	for _, article := range articles {
		content := article.Content
		if content == "" {
			content = article.Summary
		}
		inputs = append(inputs, domain.SummaryInput{
			Headline: article.Headline,
			Source:   article.SourceName,
			Content:  feed.StripHTML(content),
			Link:     article.Link,
		})
	}
	return inputs
}

// clampMap bounds a structured field at limit entries. Keys are dropped in
// reverse sorted order so the result is deterministic.
func clampMap(m map[string]string, limit int) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	if limit <= 0 || len(m) <= limit {
		return m
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clamped := make(map[string]string, limit)
	for _, k := range keys[:limit] {
		clamped[k] = m[k]
	}
	return clamped
}

func clampArticles(articles []domain.TopArticle, limit int) []domain.TopArticle {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}

func distinctValues(feeds []config.FeedConfig, pick func(config.FeedConfig) string) []string {
	seen := map[string]bool{}
	var values []string
	for _, f := range feeds {
		v := pick(f)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func scopeLabel(scope domain.SummaryScope) string {
	switch {
	case scope.Category != nil && scope.Country != nil:
		return fmt.Sprintf("category=%s country=%s", *scope.Category, *scope.Country)
	case scope.Category != nil:
		return "category=" + *scope.Category
	case scope.Country != nil:
		return "country=" + *scope.Country
	default:
		return "overall"
	}
}
