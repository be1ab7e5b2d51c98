package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadflowhq/leadflow/internal/domain"
)

// StatusRepository handles database operations for status definitions.
type StatusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(pool *pgxpool.Pool) *StatusRepository {
	return &StatusRepository{pool: pool}
}

// GetGraph loads every status definition and returns the parsed,
// validated status graph.
func (r *StatusRepository) GetGraph(ctx context.Context) (*domain.StatusGraph, error) {
	query, args, err := psql.
		Select("name", "next_statuses", "days_limit", "auto_move_to", "sort_order", "created_at").
		From("statuses").
		OrderBy("sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetGraph query for statuses: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}
	defer rows.Close()

	var defs []*domain.StatusDefinition
	for rows.Next() {
		var def domain.StatusDefinition
		err := rows.Scan(
			&def.Name,
			&def.NextStatuses,
			&def.DaysLimit,
			&def.AutoMoveTo,
			&def.SortOrder,
			&def.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan status definition: %w", err)
		}
		defs = append(defs, &def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return domain.NewStatusGraph(defs)
}
