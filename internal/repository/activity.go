package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadflowhq/leadflow/internal/domain"
)

// ActivityRepository handles database operations for the activity log.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Append writes a single activity entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	query, args, err := psql.
		Insert("activity_log").
		Columns("lead_id", "actor_id", "action", "details").
		Values(entry.LeadID, entry.ActorID, entry.Action, entry.Details).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Append query for activity entry: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}

	return nil
}

// AppendBatch writes many entries in one statement. The idle sweep
// batches its audit records after the scan; ordering among them does
// not matter since each references a distinct lead.
func (r *ActivityRepository) AppendBatch(ctx context.Context, entries []*domain.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	qb := psql.
		Insert("activity_log").
		Columns("lead_id", "actor_id", "action", "details")
	for _, entry := range entries {
		qb = qb.Values(entry.LeadID, entry.ActorID, entry.Action, entry.Details)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build AppendBatch query for activity entries: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("append activity entries: %w", err)
	}

	return nil
}

// GetByLeadID retrieves the activity trail for a lead, oldest first.
func (r *ActivityRepository) GetByLeadID(ctx context.Context, leadID string) ([]*domain.ActivityEntry, error) {
	query, args, err := psql.
		Select("id", "lead_id", "actor_id", "action", "details", "created_at").
		From("activity_log").
		Where(sq.Eq{"lead_id": leadID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByLeadID query for activity entries: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityEntry
	for rows.Next() {
		var entry domain.ActivityEntry
		err := rows.Scan(
			&entry.ID,
			&entry.LeadID,
			&entry.ActorID,
			&entry.Action,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
