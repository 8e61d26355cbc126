package storage

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

// FeedHealthRepository upserts per-source health rows.
type FeedHealthRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

var _ ports.FeedHealthRepository = (*FeedHealthRepository)(nil)

// NewFeedHealthRepository wires a pgx pool.
func NewFeedHealthRepository(db *pgxpool.Pool, logger *slog.Logger) *FeedHealthRepository {
	return &FeedHealthRepository{db: db, logger: logger}
}

// RecordSuccess stamps the attempt and success times, clears the last
// error, and adds newArticles to the cumulative count.
func (r *FeedHealthRepository) RecordSuccess(ctx context.Context, name, url string, newArticles int) error {
	query, args, err := psql.Insert("feed_status").
		Columns("feed_name", "feed_url", "last_attempt_at", "last_success_at", "articles_count", "is_active").
		Values(name, url, sq.Expr("NOW()"), sq.Expr("NOW()"), newArticles, true).
		Suffix(`ON CONFLICT (feed_name) DO UPDATE SET
			feed_url = EXCLUDED.feed_url,
			last_attempt_at = NOW(),
			last_success_at = NOW(),
			last_error = NULL,
			articles_count = feed_status.articles_count + EXCLUDED.articles_count`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build health success upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("record feed success: %w", err)
	}

	return nil
}

// RecordFailure stamps the attempt time and the error message. The success
// timestamp and cumulative count are left untouched.
func (r *FeedHealthRepository) RecordFailure(ctx context.Context, name, url, message string) error {
	query, args, err := psql.Insert("feed_status").
		Columns("feed_name", "feed_url", "last_attempt_at", "last_error", "is_active").
		Values(name, url, sq.Expr("NOW()"), message, true).
		Suffix(`ON CONFLICT (feed_name) DO UPDATE SET
			feed_url = EXCLUDED.feed_url,
			last_attempt_at = NOW(),
			last_error = EXCLUDED.last_error`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build health failure upsert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("record feed failure: %w", err)
	}

	return nil
}

// List returns every health row for the run report.
func (r *FeedHealthRepository) List(ctx context.Context) ([]domain.FeedHealth, error) {
	query, args, err := psql.Select("id", "feed_name", "feed_url", "last_attempt_at",
		"last_success_at", "COALESCE(last_error, '')", "articles_count", "is_active").
		From("feed_status").
		OrderBy("feed_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build health list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feed status: %w", err)
	}
	defer rows.Close()

	var records []domain.FeedHealth
	for rows.Next() {
		var h domain.FeedHealth
		if err := rows.Scan(&h.ID, &h.SourceName, &h.SourceURL, &h.LastAttemptAt,
			&h.LastSuccessAt, &h.LastError, &h.ArticlesCount, &h.IsActive); err != nil {
			return nil, fmt.Errorf("scan feed status: %w", err)
		}
		records = append(records, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed status: %w", err)
	}

	return records, nil
}
