package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

var articleColumns = []string{
	"id",
	"source_name",
	"headline",
	"COALESCE(summary, '')",
	"COALESCE(content, '')",
	"link",
	"COALESCE(language, 'unknown')",
	"COALESCE(category, '')",
	"COALESCE(country, '')",
	"fingerprint",
	"published_at",
	"ingested_at",
}

// ArticleRepository persists articles in Postgres.
type ArticleRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository wires a pgx pool.
func NewArticleRepository(db *pgxpool.Pool, logger *slog.Logger) *ArticleRepository {
	return &ArticleRepository{db: db, logger: logger}
}

// ExistsByFingerprint answers the dedup pre-check.
func (r *ArticleRepository) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := psql.Select("1").
		From("articles").
		Where(sq.Eq{"fingerprint": fingerprint}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build fingerprint query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}

	return true, nil
}

// Save inserts a new article. A unique-constraint violation on the
// fingerprint index maps to domain.ErrDuplicateArticle; callers treat it
// as a duplicate signal, not a failure.
func (r *ArticleRepository) Save(ctx context.Context, article *domain.Article) error {
	query, args, err := psql.Insert("articles").
		Columns("source_name", "headline", "summary", "content", "link",
			"language", "category", "country", "fingerprint", "published_at").
		Values(article.SourceName, article.Headline, article.Summary, article.Content,
			article.Link, article.Language, article.Category, article.Country,
			article.Fingerprint, article.PublishedAt).
		Suffix("RETURNING id, ingested_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build article insert: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&article.ID, &article.IngestedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateArticle
	}
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}

	return nil
}

// FindIngestedBetween selects articles whose ingestion calendar date falls
// in the half-open interval [from, to), newest first.
func (r *ArticleRepository) FindIngestedBetween(ctx context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error) {
	return r.findBetween(ctx, "ingested_at", from, to, filter)
}

// FindPublishedBetween is the fallback window query over publication date.
// Articles without a publication date never match.
func (r *ArticleRepository) FindPublishedBetween(ctx context.Context, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error) {
	return r.findBetween(ctx, "published_at", from, to, filter)
}

func (r *ArticleRepository) findBetween(ctx context.Context, column string, from, to time.Time, filter domain.ArticleFilter) ([]domain.Article, error) {
	builder := psql.Select(articleColumns...).
		From("articles").
		Where(sq.Expr(column+"::date >= ?::date", from)).
		Where(sq.Expr(column+"::date < ?::date", to)).
		OrderBy(column + " DESC")

	if filter.Category != nil {
		builder = builder.Where(sq.Eq{"category": *filter.Category})
	}
	if filter.Country != nil {
		builder = builder.Where(sq.Eq{"country": *filter.Country})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build window query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.SourceName, &a.Headline, &a.Summary, &a.Content,
			&a.Link, &a.Language, &a.Category, &a.Country, &a.Fingerprint,
			&a.PublishedAt, &a.IngestedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}
