package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
)

// AssignmentRule couples a trigger status to a role-based
// auto-assignment: when a lead is manually moved to TriggerStatus, it
// is assigned to the first active user holding AssignToRole.
type AssignmentRule struct {
	TriggerStatus string
	AssignToRole  domain.UserRole
}

// DefaultAssignmentRules is the stock rule set: passing screening
// hands the lead to a manager for follow-up.
var DefaultAssignmentRules = []AssignmentRule{
	{TriggerStatus: "Screening Pass", AssignToRole: domain.UserRoleManager},
}

// TransitionService owns the status graph semantics: transition
// validation, available-transition lookup, the assignment side effect,
// and the idle-timeout sweep. It holds no state beyond the sweep's
// re-entrancy guard, so instances are safe for concurrent request use.
type TransitionService struct {
	leads    LeadStore
	statuses StatusGraphStore
	users    UserDirectory
	activity ActivityLog
	rules    []AssignmentRule

	sweeping atomic.Bool
	now      func() time.Time
}

// NewTransitionService creates a new TransitionService with the given
// assignment rules (nil means DefaultAssignmentRules).
func NewTransitionService(
	leads LeadStore,
	statuses StatusGraphStore,
	users UserDirectory,
	activity ActivityLog,
	rules []AssignmentRule,
) *TransitionService {
	if rules == nil {
		rules = DefaultAssignmentRules
	}
	return &TransitionService{
		leads:    leads,
		statuses: statuses,
		users:    users,
		activity: activity,
		rules:    rules,
		now:      time.Now,
	}
}

// ValidateTransition reports whether newStatus is manually reachable
// from currentStatus. Unknown currentStatus fails closed. Pure read.
func (s *TransitionService) ValidateTransition(ctx context.Context, currentStatus, newStatus string) (bool, error) {
	graph, err := s.statuses.GetGraph(ctx)
	if err != nil {
		return false, fmt.Errorf("load status graph: %w", err)
	}
	return graph.CanTransition(currentStatus, newStatus), nil
}

// AvailableTransitions returns the manual destinations from the given
// status for the "Change Status" menu. Empty for unknown or terminal
// statuses.
func (s *TransitionService) AvailableTransitions(ctx context.Context, currentStatus string) ([]string, error) {
	graph, err := s.statuses.GetGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load status graph: %w", err)
	}
	return graph.AvailableTransitions(currentStatus), nil
}

// ApplyManualTransition is the request-driven path: a staff user moves
// a lead to a new status. On success the updated lead is returned and
// a status_change entry is appended; assignment rules may additionally
// reassign the lead and append an auto_assign entry.
func (s *TransitionService) ApplyManualTransition(
	ctx context.Context,
	leadID string,
	newStatus string,
	actorID string,
) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	graph, err := s.statuses.GetGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load status graph: %w", err)
	}

	oldStatus := lead.CurrentStatus
	if !graph.CanTransition(oldStatus, newStatus) {
		return nil, fmt.Errorf("%w: %q -> %q", domain.ErrInvalidTransition, oldStatus, newStatus)
	}

	now := s.now()
	assignedTo := lead.AssignedTo
	var assignEntry *domain.ActivityEntry

	if rule := s.matchRule(newStatus); rule != nil {
		user, err := s.users.FindFirstWithRole(ctx, rule.AssignToRole)
		switch {
		case err == nil:
			assignedTo = &user.ID
			assignEntry = &domain.ActivityEntry{
				LeadID:  lead.ID,
				ActorID: nil,
				Action:  domain.ActionAutoAssign,
				Details: fmt.Sprintf("Automatically assigned to %s (%s) on %q", user.Name, rule.AssignToRole, newStatus),
			}
		case errors.Is(err, domain.ErrNoUserForRole):
			// Nobody to assign to; the transition still goes through.
			slog.Warn("auto-assignment skipped, no active user for role",
				"lead_id", lead.ID,
				"role", rule.AssignToRole,
			)
		default:
			return nil, fmt.Errorf("find user for auto-assignment: %w", err)
		}
	}

	if err := s.leads.UpdateStatus(ctx, lead.ID, oldStatus, newStatus, assignedTo, now); err != nil {
		return nil, err
	}

	lead.LastStatus = &oldStatus
	lead.CurrentStatus = newStatus
	lead.LastStatusUpdatedAt = now
	lead.AssignedTo = assignedTo

	if assignEntry != nil {
		if err := s.activity.Append(ctx, assignEntry); err != nil {
			return nil, fmt.Errorf("append auto-assign entry: %w", err)
		}
	}

	entry := &domain.ActivityEntry{
		LeadID:  lead.ID,
		ActorID: &actorID,
		Action:  domain.ActionStatusChange,
		Details: fmt.Sprintf("Status changed from %q to %q", oldStatus, newStatus),
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append status-change entry: %w", err)
	}

	slog.Info("lead status changed",
		"lead_id", lead.ID,
		"actor_id", actorID,
		"old_status", oldStatus,
		"new_status", newStatus,
	)

	return lead, nil
}

// matchRule returns the first assignment rule triggered by newStatus.
func (s *TransitionService) matchRule(newStatus string) *AssignmentRule {
	for i := range s.rules {
		if s.rules[i].TriggerStatus == newStatus {
			return &s.rules[i]
		}
	}
	return nil
}
