package usecase

import (
	"context"
	"fmt"
	"time"

	"NewsOfTheWorld/internal/domain"
)

// Shared in-memory fakes for the use case tests.

type fakeFetcher struct {
	results map[string]domain.FetchResult
	errs    map[string]error
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (domain.FetchResult, error) {
	f.fetched = append(f.fetched, url)
	if err, ok := f.errs[url]; ok {
		return domain.FetchResult{}, err
	}
	return f.results[url], nil
}

type windowCall struct {
	column string
	from   time.Time
	to     time.Time
	filter domain.ArticleFilter
}

type fakeArticles struct {
	known     map[string]bool
	saved     []domain.Article
	saveErr   error
	ingested  []domain.Article
	published []domain.Article
	calls     []windowCall
}

func newFakeArticles() *fakeArticles {
	return &fakeArticles{known: map[string]bool{}}
}

func (f *fakeArticles) ExistsByFingerprint(_ context.Context, fingerprint string) (bool, error) {
	return f.known[fingerprint], nil
}

func (f *fakeArticles) Save(_ context.Context, article *domain.Article) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.known[article.Fingerprint] {
		return domain.ErrDuplicateArticle
	}
	f.known[article.Fingerprint] = true
	article.ID = int64(len(f.saved) + 1)
	article.IngestedAt = time.Now().UTC()
	f.saved = append(f.saved, *article)
	return nil
}

func (f *fakeArticles) FindIngestedBetween(_ context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error) {
	f.calls = append(f.calls, windowCall{column: "ingested", from: from, to: to, filter: filter})
	return filterArticles(f.ingested, from, to, filter, func(a domain.Article) *time.Time { return &a.IngestedAt }), nil
}

func (f *fakeArticles) FindPublishedBetween(_ context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error) {
	f.calls = append(f.calls, windowCall{column: "published", from: from, to: to, filter: filter})
	return filterArticles(f.published, from, to, filter, func(a domain.Article) *time.Time { return a.PublishedAt }), nil
}

// filterArticles mirrors the repository's half-open calendar-date
// interval semantics over in-memory data.
func filterArticles(articles []domain.Article, from, to time.Time, filter domain.ArticleFilter, stamp func(domain.Article) *time.Time) []domain.Article {
	truncate := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	fromDate, toDate := truncate(from), truncate(to)

	var out []domain.Article
	for _, a := range articles {
		ts := stamp(a)
		if ts == nil {
			continue
		}
		date := truncate(*ts)
		if date.Before(fromDate) || !date.Before(toDate) {
			continue
		}
		if filter.Category != nil && a.Category != *filter.Category {
			continue
		}
		if filter.Country != nil && a.Country != *filter.Country {
			continue
		}
		out = append(out, a)
	}
	return out
}

type healthRecord struct {
	name    string
	url     string
	message string
	added   int
}

type fakeHealth struct {
	successes []healthRecord
	failures  []healthRecord
	err       error
}

func (f *fakeHealth) RecordSuccess(_ context.Context, name, url string, newArticles int) error {
	if f.err != nil {
		return f.err
	}
	f.successes = append(f.successes, healthRecord{name: name, url: url, added: newArticles})
	return nil
}

func (f *fakeHealth) RecordFailure(_ context.Context, name, url, message string) error {
	if f.err != nil {
		return f.err
	}
	f.failures = append(f.failures, healthRecord{name: name, url: url, message: message})
	return nil
}

func (f *fakeHealth) List(context.Context) ([]domain.FeedHealth, error) {
	return nil, nil
}

type fakeSummaries struct {
	existing map[string]bool
	saved    []domain.Summary
	found    []domain.Summary
	findErr  error
}

func newFakeSummaries() *fakeSummaries {
	return &fakeSummaries{existing: map[string]bool{}}
}

func scopeKey(windowEnd time.Time, category, country *string) string {
	c, n := "<nil>", "<nil>"
	if category != nil {
		c = *category
	}
	if country != nil {
		n = *country
	}
	return fmt.Sprintf("%s|%s|%s", windowEnd.Format(time.DateOnly), c, n)
}

func (f *fakeSummaries) Exists(_ context.Context, windowEnd time.Time, scope domain.SummaryScope) (bool, error) {
	return f.existing[scopeKey(windowEnd, scope.Category, scope.Country)], nil
}

func (f *fakeSummaries) Save(_ context.Context, summary *domain.Summary) error {
	key := scopeKey(summary.WindowEndDate, summary.Category, summary.Country)
	if f.existing[key] {
		return domain.ErrDuplicateSummary
	}
	f.existing[key] = true
	summary.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, *summary)
	return nil
}

func (f *fakeSummaries) FindByWindowEnd(_ context.Context, windowEnd time.Time) ([]domain.Summary, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []domain.Summary
	for _, s := range f.found {
		if s.WindowEndDate.Equal(windowEnd) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSummarizer struct {
	doc    domain.SummaryDocument
	err    error
	inputs [][]domain.SummaryInput
}

func (f *fakeSummarizer) Summarize(_ context.Context, articles []domain.SummaryInput) (domain.SummaryDocument, error) {
	if len(articles) == 0 {
		return domain.SummaryDocument{}, domain.ErrEmptyInput
	}
	f.inputs = append(f.inputs, articles)
	return f.doc, f.err
}

func (f *fakeSummarizer) ModelName() string { return "fake-model" }

type fakeNotifier struct {
	published []string
	errs      []error
}

func (f *fakeNotifier) Publish(_ context.Context, text string) error {
	f.published = append(f.published, text)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}
