package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadflowhq/leadflow/internal/domain"
)

// AttentionItem is one row of the early-warning report: a lead at or
// within one day of its status's idle limit.
type AttentionItem struct {
	Lead            *domain.Lead
	DaysIdle        int
	SuggestedAction string
}

// RunIdleSweep scans every lead and force-moves those idle past their
// status's day limit, appending an auto_status_change audit entry per
// move. Safe to invoke concurrently: a sweep already in flight makes
// the call a no-op (skipped, not queued). Returns the number of leads
// moved.
//
// The pass takes two bulk reads up front. A persistence failure aborts
// the remainder; leads already moved stay moved, and anything missed
// is still over-threshold on the next scheduled pass.
func (s *TransitionService) RunIdleSweep(ctx context.Context) (int, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		slog.Info("idle sweep already in progress, skipping")
		return 0, nil
	}
	defer s.sweeping.Store(false)

	graph, err := s.statuses.GetGraph(ctx)
	if err != nil {
		return 0, fmt.Errorf("load status graph: %w", err)
	}

	leads, err := s.leads.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load leads: %w", err)
	}

	now := s.now()
	moved := 0
	var entries []*domain.ActivityEntry

	for _, lead := range leads {
		def := graph.Lookup(lead.CurrentStatus)
		if def == nil || !def.HasAutoMove() {
			// Unknown statuses never auto-transition; an operator has
			// to move them back onto the graph manually.
			continue
		}

		days := lead.DaysIdle(now)
		if days < *def.DaysLimit {
			continue
		}

		oldStatus := lead.CurrentStatus
		newStatus := *def.AutoMoveTo

		if err := s.leads.UpdateStatus(ctx, lead.ID, oldStatus, newStatus, lead.AssignedTo, now); err != nil {
			return moved, fmt.Errorf("sweep update lead %s: %w", lead.ID, err)
		}
		moved++

		entries = append(entries, &domain.ActivityEntry{
			LeadID:  lead.ID,
			ActorID: nil,
			Action:  domain.ActionAutoStatusChange,
			Details: fmt.Sprintf("Automatically moved from %q to %q after %d days", oldStatus, newStatus, *def.DaysLimit),
		})

		slog.Info("lead auto-moved",
			"lead_id", lead.ID,
			"old_status", oldStatus,
			"new_status", newStatus,
			"days_idle", days,
			"days_limit", *def.DaysLimit,
		)
	}

	if err := s.activity.AppendBatch(ctx, entries); err != nil {
		return moved, fmt.Errorf("append sweep audit entries: %w", err)
	}

	slog.Info("idle sweep completed", "scanned", len(leads), "moved", moved)

	return moved, nil
}

// LeadsRequiringAttention is the read-only early-warning report: every
// lead whose status carries a day limit and which is due to
// auto-transition within the next day, or already overdue. No mutation.
func (s *TransitionService) LeadsRequiringAttention(ctx context.Context) ([]AttentionItem, error) {
	graph, err := s.statuses.GetGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load status graph: %w", err)
	}

	leads, err := s.leads.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	now := s.now()
	items := make([]AttentionItem, 0)

	for _, lead := range leads {
		def := graph.Lookup(lead.CurrentStatus)
		if def == nil || !def.HasAutoMove() {
			continue
		}

		days := lead.DaysIdle(now)
		if days < *def.DaysLimit-1 {
			continue
		}

		var action string
		if days >= *def.DaysLimit {
			action = fmt.Sprintf("will be automatically moved to %q", *def.AutoMoveTo)
		} else {
			remaining := *def.DaysLimit - days
			action = fmt.Sprintf("will be moved to %q in %d day(s)", *def.AutoMoveTo, remaining)
		}

		items = append(items, AttentionItem{
			Lead:            lead,
			DaysIdle:        days,
			SuggestedAction: action,
		})
	}

	return items, nil
}
