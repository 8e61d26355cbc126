package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/feed"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFeed(name, url string) config.FeedConfig {
	return config.FeedConfig{Name: name, URL: url, Category: "world", Country: "us", Language: "en"}
}

func newTestIngestor(fetcher *fakeFetcher, articles *fakeArticles, health *fakeHealth, settings config.ParserSettings) *Ingestor {
	return NewIngestor(fetcher, articles, health, feed.NewNormalizer(nil), settings, testLogger())
}

func entries(n int) []domain.FeedEntry {
	out := make([]domain.FeedEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.FeedEntry{
			Title: "Headline " + string(rune('A'+i)),
			Link:  "https://example.com/" + string(rune('a'+i)),
		})
	}
	return out
}

func TestIngestSourceProcessesEntries(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Entries: entries(3)},
	}}
	articles := newFakeArticles()
	health := &fakeHealth{}
	ingestor := newTestIngestor(fetcher, articles, health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Processed: 3}, result)
	require.Len(t, articles.saved, 3)
	require.Equal(t, "Example", articles.saved[0].SourceName)
	require.Equal(t, "world", articles.saved[0].Category)
	require.NotEmpty(t, articles.saved[0].Fingerprint)

	require.Len(t, health.successes, 1)
	require.Equal(t, 3, health.successes[0].added)
	require.Empty(t, health.failures)
}

func TestIngestSourceIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Entries: entries(3)},
	}}
	articles := newFakeArticles()
	ingestor := newTestIngestor(fetcher, articles, &fakeHealth{}, config.ParserSettings{})

	first := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))
	second := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Processed: 3}, first)
	require.Equal(t, domain.IngestResult{Duplicates: 3}, second)
	require.Len(t, articles.saved, 3)
}

func TestIngestSourceHTTPError(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 404},
	}}
	health := &fakeHealth{}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Errors: 1}, result)
	require.Len(t, health.failures, 1)
	require.Equal(t, "HTTP error 404 fetching feed", health.failures[0].message)
	require.Empty(t, health.successes)
}

func TestIngestSourceTransportError(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{errs: map[string]error{
		"https://example.com/rss": errors.New("dial tcp: connection refused"),
	}}
	health := &fakeHealth{}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Errors: 1}, result)
	require.Len(t, health.failures, 1)
}

func TestIngestSourceMalformedWithoutEntries(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Malformed: true, ParseError: "unexpected EOF"},
	}}
	health := &fakeHealth{}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Errors: 1}, result)
	require.Len(t, health.failures, 1)
	require.Contains(t, health.failures[0].message, "unexpected EOF")
}

func TestIngestSourceMalformedWithSurvivingEntries(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Malformed: true, ParseError: "bad entity", Entries: entries(2)},
	}}
	health := &fakeHealth{}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Processed: 2}, result)
	require.Len(t, health.successes, 1)
	require.Empty(t, health.failures)
}

func TestIngestSourceCapsEntriesPerFeed(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Entries: entries(5)},
	}}
	articles := newFakeArticles()
	ingestor := newTestIngestor(fetcher, articles, &fakeHealth{}, config.ParserSettings{MaxArticlesPerFeed: 2})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Processed: 2}, result)
	require.Len(t, articles.saved, 2)
}

func TestIngestSourceHealthWriteFailureDoesNotAffectResult(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{results: map[string]domain.FetchResult{
		"https://example.com/rss": {StatusCode: 200, Entries: entries(1)},
	}}
	health := &fakeHealth{err: errors.New("db down")}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), health, config.ParserSettings{})

	result := ingestor.IngestSource(context.Background(), testFeed("Example", "https://example.com/rss"))

	require.Equal(t, domain.IngestResult{Processed: 1}, result)
}

func TestIngestAllContinuesPastFailingSource(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		results: map[string]domain.FetchResult{
			"https://a.example/rss": {StatusCode: 200, Entries: entries(2)},
			"https://b.example/rss": {StatusCode: 500},
			"https://c.example/rss": {StatusCode: 200, Entries: entries(1)},
		},
	}
	ingestor := newTestIngestor(fetcher, newFakeArticles(), &fakeHealth{}, config.ParserSettings{})

	stats, err := ingestor.IngestAll(context.Background(), []config.FeedConfig{
		testFeed("A", "https://a.example/rss"),
		testFeed("B", "https://b.example/rss"),
		testFeed("C", "https://c.example/rss"),
	})

	require.NoError(t, err)
	require.Equal(t, 3, stats.Sources)
	require.Equal(t, 3, stats.Processed)
	require.Equal(t, 1, stats.Errors)
	require.Equal(t, []string{"https://a.example/rss", "https://b.example/rss", "https://c.example/rss"}, fetcher.fetched)
}
