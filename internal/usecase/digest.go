package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

// DigestSender delivers the stored summaries of one window end date to the
// notification channel, one message per summary record.
type DigestSender struct {
	summaries ports.SummaryRepository
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewDigestSender wires the delivery collaborators.
func NewDigestSender(summaries ports.SummaryRepository, notifier ports.Notifier, logger *slog.Logger) *DigestSender {
	return &DigestSender{summaries: summaries, notifier: notifier, logger: logger}
}

// SendDaily publishes every summary for the given window end date. A nil
// reference defaults to yesterday, matching the morning schedule. Delivery
// failures are logged per summary so one broken record does not block the
// rest.
func (d *DigestSender) SendDaily(ctx context.Context, reference *time.Time) error {
	ref := time.Now().UTC().AddDate(0, 0, -1)
	if reference != nil {
		ref = reference.UTC()
	}
	windowEnd := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	summaries, err := d.summaries.FindByWindowEnd(ctx, windowEnd)
	if err != nil {
		return fmt.Errorf("load summaries: %w", err)
	}
	if len(summaries) == 0 {
		d.logger.Info("no summaries to deliver", "windowEnd", windowEnd.Format(time.DateOnly))
		return nil
	}

	var failed int
	for _, summary := range summaries {
		if err := d.notifier.Publish(ctx, FormatSummary(summary)); err != nil {
			failed++
			d.logger.Error("failed to deliver summary",
				"windowEnd", windowEnd.Format(time.DateOnly),
				"category", deref(summary.Category),
				"country", deref(summary.Country),
				"error", err,
			)
		}
	}

	d.logger.Info("digest delivered",
		"windowEnd", windowEnd.Format(time.DateOnly),
		"summaries", len(summaries)-failed,
		"failed", failed,
	)

	if failed > 0 {
		return fmt.Errorf("digest finished with %d failed deliveries", failed)
	}
	return nil
}

// FormatSummary renders one summary record as the digest message.
func FormatSummary(summary domain.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 Date: %s\n", summary.WindowEndDate.Format(time.DateOnly))
	if summary.Category != nil {
		fmt.Fprintf(&b, "📂 Category: %s\n", *summary.Category)
	}
	if summary.Country != nil {
		fmt.Fprintf(&b, "🌍 Country: %s\n", *summary.Country)
	}
	fmt.Fprintf(&b, "📰 Articles Count: %d\n", summary.ArticlesCount)

	if summary.TextSummary != "" {
		fmt.Fprintf(&b, "\n📝 Summary:\n%s\n", summary.TextSummary)
	}

	writeSection(&b, "🔑 Main Events", summary.MainEvents)
	writeSection(&b, "💡 Key Themes", summary.KeyThemes)
	writeSection(&b, "🌎 Impacted Regions", summary.ImpactedRegions)

	if summary.DetailedSummary != "" {
		fmt.Fprintf(&b, "\n📖 Detailed Summary:\n%s\n", summary.DetailedSummary)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, entries map[string]string) {
	if len(entries) == 0 {
		return
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "• %s: %s\n", k, entries[k])
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
