package service

import (
	"context"
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
)

// The transition engine talks to its collaborators through these
// narrow interfaces. The pgx repositories satisfy them in production;
// tests substitute in-memory stores.

// LeadStore reads and mutates lead records.
type LeadStore interface {
	GetAll(ctx context.Context) ([]*domain.Lead, error)
	GetByID(ctx context.Context, leadID string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, leadID, oldStatus, newStatus string, assignedTo *string, at time.Time) error
}

// StatusGraphStore loads the status graph.
type StatusGraphStore interface {
	GetGraph(ctx context.Context) (*domain.StatusGraph, error)
}

// UserDirectory resolves role-based lookups for auto-assignment.
type UserDirectory interface {
	FindFirstWithRole(ctx context.Context, role domain.UserRole) (*domain.User, error)
}

// ActivityLog is the append-only audit sink.
type ActivityLog interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	AppendBatch(ctx context.Context, entries []*domain.ActivityEntry) error
}
