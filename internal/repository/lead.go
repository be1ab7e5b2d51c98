package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadflowhq/leadflow/internal/domain"
)

// leadColumns is the shared list of columns for lead queries.
var leadColumns = []string{
	"id", "name", "email", "phone", "company", "source", "partner_code",
	"current_status", "last_status", "last_status_updated_at", "assigned_to",
	"notes", "created_at", "updated_at",
}

// LeadRepository handles database operations for leads.
type LeadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

// scanLead scans a single row into a Lead struct.
func scanLead(row pgx.Row) (*domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Source,
		&lead.PartnerCode,
		&lead.CurrentStatus,
		&lead.LastStatus,
		&lead.LastStatusUpdatedAt,
		&lead.AssignedTo,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	return &lead, nil
}

// scanLeads scans multiple rows into a slice of Lead structs.
func scanLeads(rows pgx.Rows) ([]*domain.Lead, error) {
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return leads, nil
}

// GetByID retrieves a lead by ID.
func (r *LeadRepository) GetByID(ctx context.Context, leadID string) (*domain.Lead, error) {
	query, args, err := psql.
		Select(leadColumns...).
		From("leads").
		Where(sq.Eq{"id": leadID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for lead: %w", err)
	}

	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

// GetAll retrieves every lead. The idle sweep uses this single bulk
// read instead of per-lead queries.
func (r *LeadRepository) GetAll(ctx context.Context) ([]*domain.Lead, error) {
	query, args, err := psql.
		Select(leadColumns...).
		From("leads").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetAll query for leads: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}

	return scanLeads(rows)
}

// Create inserts a new lead and returns it with generated fields populated.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead.Source == "" {
		lead.Source = domain.LeadSourceManual
	}
	if lead.CurrentStatus == "" {
		lead.CurrentStatus = domain.SeedStatus
	}

	query, args, err := psql.
		Insert("leads").
		Columns(
			"name", "email", "phone", "company", "source", "partner_code",
			"current_status", "assigned_to", "notes",
		).
		Values(
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Company,
			lead.Source,
			lead.PartnerCode,
			lead.CurrentStatus,
			lead.AssignedTo,
			lead.Notes,
		).
		Suffix("RETURNING id, last_status_updated_at, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for lead: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&lead.ID, &lead.LastStatusUpdatedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	return lead, nil
}

// UpdateStatus moves a lead to a new status, recording the one-deep
// status history and resetting the idle clock. A single-row UPDATE;
// concurrent writers are last-write-wins. assignedTo is written as
// given so an assignment side effect lands in the same row update.
func (r *LeadRepository) UpdateStatus(
	ctx context.Context,
	leadID string,
	oldStatus string,
	newStatus string,
	assignedTo *string,
	at time.Time,
) error {
	query, args, err := psql.
		Update("leads").
		Set("current_status", newStatus).
		Set("last_status", oldStatus).
		Set("last_status_updated_at", at).
		Set("assigned_to", assignedTo).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": leadID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for lead %s: %w", leadID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}

	return nil
}
