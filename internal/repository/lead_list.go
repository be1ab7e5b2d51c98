package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/leadflowhq/leadflow/internal/domain"
)

// LeadListFilters holds all supported filters for lead listing.
type LeadListFilters struct {
	Statuses    []string // Optional: filter by current status
	AssignedTo  *string  // Optional: filter by assignee
	Unassigned  bool     // Optional: show only unassigned
	Source      *string  // Optional: filter by source
	PartnerCode *string  // Optional: filter by partner code
	Sort        []string // Optional: sort fields (with - prefix for DESC)
	Limit       int      // Required: page size
	Offset      int      // Required: page offset
}

// leadSortColumns are the columns a caller may sort by.
var leadSortColumns = map[string]bool{
	"name":                   true,
	"current_status":         true,
	"last_status_updated_at": true,
	"created_at":             true,
	"updated_at":             true,
}

// List retrieves leads with filters and pagination.
func (r *LeadRepository) List(ctx context.Context, filters LeadListFilters) ([]*domain.Lead, int, error) {
	qb := psql.Select(leadColumns...).From("leads")

	if len(filters.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"current_status": filters.Statuses})
	}

	if filters.Unassigned {
		qb = qb.Where(sq.Eq{"assigned_to": nil})
	} else if filters.AssignedTo != nil {
		qb = qb.Where(sq.Eq{"assigned_to": *filters.AssignedTo})
	}

	if filters.Source != nil {
		qb = qb.Where(sq.Eq{"source": *filters.Source})
	}

	if filters.PartnerCode != nil {
		qb = qb.Where(sq.Eq{"partner_code": *filters.PartnerCode})
	}

	if len(filters.Sort) == 0 {
		qb = qb.OrderBy("created_at DESC")
	} else {
		for _, sort := range filters.Sort {
			field := sort
			dir := "ASC"
			if strings.HasPrefix(sort, "-") {
				field = sort[1:]
				dir = "DESC"
			}
			if !leadSortColumns[field] {
				continue
			}
			qb = qb.OrderBy(field + " " + dir)
		}
	}

	qb = qb.Limit(uint64(filters.Limit)).Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for leads: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query leads: %w", err)
	}

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.countLeads(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// countLeads counts leads matching the filters, ignoring pagination.
func (r *LeadRepository) countLeads(ctx context.Context, filters LeadListFilters) (int, error) {
	qb := psql.Select("COUNT(*)").From("leads")

	if len(filters.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"current_status": filters.Statuses})
	}
	if filters.Unassigned {
		qb = qb.Where(sq.Eq{"assigned_to": nil})
	} else if filters.AssignedTo != nil {
		qb = qb.Where(sq.Eq{"assigned_to": *filters.AssignedTo})
	}
	if filters.Source != nil {
		qb = qb.Where(sq.Eq{"source": *filters.Source})
	}
	if filters.PartnerCode != nil {
		qb = qb.Where(sq.Eq{"partner_code": *filters.PartnerCode})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query for leads: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}

	return total, nil
}
