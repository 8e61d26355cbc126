package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"NewsOfTheWorld/internal/domain"
)

func articleAt(headline, category, country string, ingested time.Time, published *time.Time) domain.Article {
	return domain.Article{
		Headline:    headline,
		Category:    category,
		Country:     country,
		IngestedAt:  ingested,
		PublishedAt: published,
	}
}

func TestSelectPrefersIngestionTime(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	articles := newFakeArticles()
	articles.ingested = []domain.Article{
		articleAt("inside", "world", "us", reference.AddDate(0, 0, -1), nil),
		articleAt("too old", "world", "us", reference.AddDate(0, 0, -2), nil),
		articleAt("too new", "world", "us", reference, nil),
	}

	selector := NewWindowSelector(articles, testLogger())
	selected, via, err := selector.Select(context.Background(), reference, 1, domain.ArticleFilter{})

	require.NoError(t, err)
	require.Equal(t, WindowByIngested, via)
	require.Len(t, selected, 1)
	require.Equal(t, "inside", selected[0].Headline)
}

func TestSelectFallsBackToPublicationTime(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	published := reference.AddDate(0, 0, -1)

	articles := newFakeArticles()
	articles.published = []domain.Article{
		articleAt("backfilled", "world", "us", reference.AddDate(0, 0, -30), &published),
	}

	selector := NewWindowSelector(articles, testLogger())
	selected, via, err := selector.Select(context.Background(), reference, 1, domain.ArticleFilter{})

	require.NoError(t, err)
	require.Equal(t, WindowByPublished, via)
	require.Len(t, selected, 1)
	require.Equal(t, "backfilled", selected[0].Headline)

	require.Len(t, articles.calls, 2)
	require.Equal(t, "ingested", articles.calls[0].column)
	require.Equal(t, "published", articles.calls[1].column)
}

func TestSelectEmptyWindow(t *testing.T) {
	t.Parallel()

	selector := NewWindowSelector(newFakeArticles(), testLogger())
	selected, via, err := selector.Select(context.Background(), time.Now().UTC(), 1, domain.ArticleFilter{})

	require.NoError(t, err)
	require.Equal(t, WindowByPublished, via)
	require.Empty(t, selected)
}

func TestSelectIntervalBounds(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	articles := newFakeArticles()
	selector := NewWindowSelector(articles, testLogger())

	_, _, err := selector.Select(context.Background(), reference, 7, domain.ArticleFilter{})
	require.NoError(t, err)

	require.NotEmpty(t, articles.calls)
	require.Equal(t, reference.AddDate(0, 0, -7), articles.calls[0].from)
	require.Equal(t, reference, articles.calls[0].to)
}

func TestSelectClampsLookback(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	articles := newFakeArticles()
	selector := NewWindowSelector(articles, testLogger())

	_, _, err := selector.Select(context.Background(), reference, 0, domain.ArticleFilter{})
	require.NoError(t, err)
	require.Equal(t, reference.AddDate(0, 0, -1), articles.calls[0].from)
}

func TestSelectWiderWindowContainsNarrower(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	articles := newFakeArticles()
	for day := 1; day <= 10; day++ {
		articles.ingested = append(articles.ingested,
			articleAt("day-"+string(rune('0'+day%10)), "world", "us", reference.AddDate(0, 0, -day), nil))
	}

	selector := NewWindowSelector(articles, testLogger())

	daily, _, err := selector.Select(context.Background(), reference, 1, domain.ArticleFilter{})
	require.NoError(t, err)
	weekly, _, err := selector.Select(context.Background(), reference, 7, domain.ArticleFilter{})
	require.NoError(t, err)

	require.Len(t, daily, 1)
	require.Len(t, weekly, 7)

	headlines := map[string]bool{}
	for _, a := range weekly {
		headlines[a.Headline] = true
	}
	for _, a := range daily {
		require.True(t, headlines[a.Headline])
	}
}

func TestSelectAppliesScopeFilter(t *testing.T) {
	t.Parallel()

	reference := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	inWindow := reference.AddDate(0, 0, -1)

	articles := newFakeArticles()
	articles.ingested = []domain.Article{
		articleAt("world-us", "world", "us", inWindow, nil),
		articleAt("tech-us", "tech", "us", inWindow, nil),
		articleAt("world-fr", "world", "fr", inWindow, nil),
	}

	selector := NewWindowSelector(articles, testLogger())

	category := "world"
	byCategory, _, err := selector.Select(context.Background(), reference, 1, domain.ArticleFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	country := "fr"
	byCountry, _, err := selector.Select(context.Background(), reference, 1, domain.ArticleFilter{Country: &country})
	require.NoError(t, err)
	require.Len(t, byCountry, 1)
	require.Equal(t, "world-fr", byCountry[0].Headline)
}
