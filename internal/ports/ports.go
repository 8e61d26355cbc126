package ports

import (
	"context"
	"time"

	"NewsOfTheWorld/internal/domain"
)

// FeedFetcher retrieves one feed URL and reports transport status, a
// malformed flag, and whatever entries survived parsing. Transport-level
// errors (DNS, refused connection) are returned as errors; HTTP error
// statuses are reported through FetchResult.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (domain.FetchResult, error)
}

// ArticleRepository persists admitted articles and answers dedup and
// window queries. Save returns domain.ErrDuplicateArticle when the
// fingerprint unique index rejects the row.
type ArticleRepository interface {
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)
	Save(ctx context.Context, article *domain.Article) error
	FindIngestedBetween(ctx context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error)
	FindPublishedBetween(ctx context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error)
}

// FeedHealthRepository upserts per-source health records. Both calls stamp
// the attempt time; RecordSuccess additionally stamps the success time and
// adds newArticles to the cumulative count.
type FeedHealthRepository interface {
	RecordSuccess(ctx context.Context, name, url string, newArticles int) error
	RecordFailure(ctx context.Context, name, url, message string) error
	List(ctx context.Context) ([]domain.FeedHealth, error)
}

// SummaryRepository persists summary records under the (window end date,
// category, country) uniqueness triple. Save returns
// domain.ErrDuplicateSummary on a late constraint violation.
type SummaryRepository interface {
	Exists(ctx context.Context, windowEnd time.Time, scope domain.SummaryScope) (bool, error)
	Save(ctx context.Context, summary *domain.Summary) error
	FindByWindowEnd(ctx context.Context, windowEnd time.Time) ([]domain.Summary, error)
}

// InteractionRepository records summarizer calls for audit. Best effort;
// callers log failures and move on.
type InteractionRepository interface {
	Record(ctx context.Context, interaction domain.ModelInteraction) error
}

// Summarizer turns article projections into a structured summary document.
// Implementations absorb backend failures into an error document rather
// than returning an error; the only error case is a contract violation
// such as empty input.
type Summarizer interface {
	Summarize(ctx context.Context, articles []domain.SummaryInput) (domain.SummaryDocument, error)
	ModelName() string
}

// Notifier delivers an arbitrary-length text payload to the messaging
// endpoint, chunking and retrying internally.
type Notifier interface {
	Publish(ctx context.Context, text string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Schedule(expression string, job func(time.Time)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
