package storage

import (
	"context"
	"encoding/json"
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

// SummaryRepository persists summary records under the (window end date,
// category, country) uniqueness triple.
type SummaryRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

var _ ports.SummaryRepository = (*SummaryRepository)(nil)

// NewSummaryRepository wires a pgx pool.
func NewSummaryRepository(db *pgxpool.Pool, logger *slog.Logger) *SummaryRepository {
	return &SummaryRepository{db: db, logger: logger}
}

// Exists is the duplicate-prevention pre-check. IS NOT DISTINCT FROM keeps
// NULL scope components comparable.
func (r *SummaryRepository) Exists(ctx context.Context, windowEnd time.Time, scope domain.SummaryScope) (bool, error) {
	query, args, err := psql.Select("1").
		From("daily_summaries").
		Where(sq.Eq{"window_end_date": windowEnd}).
		Where(sq.Expr("category IS NOT DISTINCT FROM ?", scope.Category)).
		Where(sq.Expr("country IS NOT DISTINCT FROM ?", scope.Country)).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build summary exists query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query summary exists: %w", err)
	}

	return true, nil
}

// Save inserts a summary record. A late unique violation on the scope
// index maps to domain.ErrDuplicateSummary.
func (r *SummaryRepository) Save(ctx context.Context, summary *domain.Summary) error {
	mainEvents, err := marshalMap(summary.MainEvents)
	if err != nil {
		return fmt.Errorf("marshal main events: %w", err)
	}
	keyThemes, err := marshalMap(summary.KeyThemes)
	if err != nil {
		return fmt.Errorf("marshal key themes: %w", err)
	}
	regions, err := marshalMap(summary.ImpactedRegions)
	if err != nil {
		return fmt.Errorf("marshal impacted regions: %w", err)
	}
	timeline, err := marshalMap(summary.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	topArticles, err := json.Marshal(summary.TopArticles)
	if err != nil {
		return fmt.Errorf("marshal top articles: %w", err)
	}

	raw := summary.Raw
	if len(raw) == 0 {
		raw = []byte("null")
	}

	query, args, err := psql.Insert("daily_summaries").
		Columns("window_end_date", "category", "country", "text_summary", "detailed_summary",
			"main_events", "key_themes", "impacted_regions", "timeline", "top_articles",
			"articles_count", "generated_at", "model_name", "raw_response").
		Values(summary.WindowEndDate, summary.Category, summary.Country,
			summary.TextSummary, summary.DetailedSummary,
			mainEvents, keyThemes, regions, timeline, topArticles,
			summary.ArticlesCount, summary.GeneratedAt, summary.ModelName, raw).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build summary insert: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&summary.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateSummary
	}
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}

	return nil
}

// FindByWindowEnd returns every summary record for one window end date,
// overall scope first.
func (r *SummaryRepository) FindByWindowEnd(ctx context.Context, windowEnd time.Time) ([]domain.Summary, error) {
	query, args, err := psql.Select("id", "window_end_date", "category", "country",
		"text_summary", "COALESCE(detailed_summary, '')",
		"main_events", "key_themes", "impacted_regions", "timeline", "top_articles",
		"articles_count", "generated_at", "model_name", "raw_response").
		From("daily_summaries").
		Where(sq.Eq{"window_end_date": windowEnd}).
		OrderBy("category NULLS FIRST", "country NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary window query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.Summary
	for rows.Next() {
		var (
			s           domain.Summary
			mainEvents  []byte
			keyThemes   []byte
			regions     []byte
			timeline    []byte
			topArticles []byte
		)
		if err := rows.Scan(&s.ID, &s.WindowEndDate, &s.Category, &s.Country,
			&s.TextSummary, &s.DetailedSummary,
			&mainEvents, &keyThemes, &regions, &timeline, &topArticles,
			&s.ArticlesCount, &s.GeneratedAt, &s.ModelName, &s.Raw); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}

		if s.MainEvents, err = unmarshalMap(mainEvents); err != nil {
			return nil, fmt.Errorf("unmarshal main events: %w", err)
		}
		if s.KeyThemes, err = unmarshalMap(keyThemes); err != nil {
			return nil, fmt.Errorf("unmarshal key themes: %w", err)
		}
		if s.ImpactedRegions, err = unmarshalMap(regions); err != nil {
			return nil, fmt.Errorf("unmarshal impacted regions: %w", err)
		}
		if s.Timeline, err = unmarshalMap(timeline); err != nil {
			return nil, fmt.Errorf("unmarshal timeline: %w", err)
		}
		if len(topArticles) > 0 {
			if err := json.Unmarshal(topArticles, &s.TopArticles); err != nil {
				return nil, fmt.Errorf("unmarshal top articles: %w", err)
			}
		}

		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return summaries, nil
}

func marshalMap(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func unmarshalMap(raw []byte) (map[string]string, error) {
	m := map[string]string{}
	if len(raw) == 0 || string(raw) == "null" {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
