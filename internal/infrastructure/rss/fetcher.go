package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsOfTheWorld/internal/config"
	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

// maxFeedBytes caps how much of a feed body is read.
const maxFeedBytes = 10 << 20

// Fetcher retrieves and parses syndication feeds. HTTP error statuses and
// parse failures are reported through FetchResult so the coordinator can
// classify them; only transport-level failures surface as errors, and those
// are retried per settings.retryAttempts before giving up.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	retryAttempts int
	logger        *slog.Logger
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client from parser settings.
func NewFetcher(settings config.ParserSettings, logger *slog.Logger) *Fetcher {
	attempts := settings.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		client:        &http.Client{Timeout: settings.TimeoutDuration()},
		userAgent:     settings.UserAgent,
		retryAttempts: attempts,
		logger:        logger,
	}
}

// Fetch downloads one feed URL and maps it to the fetch-result contract.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.FetchResult, error) {
	body, status, err := f.download(ctx, url)
	if err != nil {
		return domain.FetchResult{}, err
	}

	result := domain.FetchResult{StatusCode: status}
	if status >= http.StatusBadRequest {
		return result, nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		result.Malformed = true
		result.ParseError = err.Error()
		return result, nil
	}

	result.Entries = make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		result.Entries = append(result.Entries, toFeedEntry(item))
	}

	return result, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, int, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}
		if f.userAgent != "" {
			req.Header.Set("User-Agent", f.userAgent)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			f.debug("feed request failed", "url", url, "attempt", attempt, "error", err)

			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("fetch feed %s: %w", url, lastErr)
}

// toFeedEntry maps one gofeed item onto the raw-entry contract. gofeed folds
// the Atom summary into Description, so both optional fields carry it; nil
// parsed dates stay nil, standing in for absent or malformed source dates.
func toFeedEntry(item *gofeed.Item) domain.FeedEntry {
	entry := domain.FeedEntry{
		Title:       item.Title,
		Description: item.Description,
		Summary:     item.Description,
		Link:        item.Link,
		Published:   item.PublishedParsed,
		Updated:     item.UpdatedParsed,
	}
	if item.Content != "" {
		entry.Content = []domain.ContentBlock{{Value: item.Content}}
	}
	return entry
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
