package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PipelineStats summarizes the lead pipeline for the dashboard.
type PipelineStats struct {
	TotalLeads            int
	LeadsByStatus         map[string]int
	Unassigned            int
	AutoMovedLast30Days   int
	ConversionRatePercent float64
}

// StatsRepository computes pipeline statistics.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetPipelineStats aggregates lead counts by status plus derived totals.
// Conversion rate is approved leads over all leads in a terminal status.
func (r *StatsRepository) GetPipelineStats(ctx context.Context) (*PipelineStats, error) {
	stats := &PipelineStats{
		LeadsByStatus: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT current_status, COUNT(*)
		FROM leads
		GROUP BY current_status
	`)
	if err != nil {
		return nil, fmt.Errorf("query leads by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.LeadsByStatus[status] = count
		stats.TotalLeads += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads WHERE assigned_to IS NULL
	`).Scan(&stats.Unassigned)
	if err != nil {
		return nil, fmt.Errorf("count unassigned leads: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM activity_log
		WHERE action = 'auto_status_change' AND created_at > NOW() - INTERVAL '30 days'
	`).Scan(&stats.AutoMovedLast30Days)
	if err != nil {
		return nil, fmt.Errorf("count auto status changes: %w", err)
	}

	var approved, closed int
	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE l.current_status = 'Approved'),
			COUNT(*) FILTER (WHERE s.next_statuses = '{}' AND s.auto_move_to IS NULL)
		FROM leads l
		JOIN statuses s ON s.name = l.current_status
	`).Scan(&approved, &closed)
	if err != nil {
		return nil, fmt.Errorf("count closed leads: %w", err)
	}
	if closed > 0 {
		stats.ConversionRatePercent = float64(approved) / float64(closed) * 100
	}

	return stats, nil
}
