package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"NewsOfTheWorld/internal/domain"
	"NewsOfTheWorld/internal/ports"
)

// InteractionRepository records summarizer calls for audit.
type InteractionRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

var _ ports.InteractionRepository = (*InteractionRepository)(nil)

// NewInteractionRepository wires a pgx pool.
func NewInteractionRepository(db *pgxpool.Pool, logger *slog.Logger) *InteractionRepository {
	return &InteractionRepository{db: db, logger: logger}
}

// Record appends one audit row.
func (r *InteractionRepository) Record(ctx context.Context, interaction domain.ModelInteraction) error {
	var response any
	if len(interaction.Response) > 0 {
		response = interaction.Response
	}

	query, args, err := psql.Insert("model_interactions").
		Columns("input_prompt", "response", "status", "error_message").
		Values(interaction.Prompt, response, interaction.Status, interaction.ErrorMessage).
		ToSql()
	if err != nil {
		return fmt.Errorf("build interaction insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}

	return nil
}
