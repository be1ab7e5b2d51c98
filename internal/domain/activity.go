package domain

import "time"

// ActivityAction represents the kind of audited action.
type ActivityAction string

const (
	ActionLeadCreated      ActivityAction = "lead_created"
	ActionStatusChange     ActivityAction = "status_change"
	ActionAutoStatusChange ActivityAction = "auto_status_change"
	ActionAutoAssign       ActivityAction = "auto_assign"
)

// SystemActor is how automatic actions are rendered to humans. Stored
// as a NULL actor id; never a real user id.
const SystemActor = "system"

// ActivityEntry is an append-only audit record for a lead mutation.
type ActivityEntry struct {
	ID        string
	LeadID    string
	ActorID   *string // nil for automatic actions
	Action    ActivityAction
	Details   string
	CreatedAt time.Time
}

// IsSystemEntry returns true if the entry was produced by the sweep or
// another automatic path rather than a user request.
func (e *ActivityEntry) IsSystemEntry() bool {
	return e.ActorID == nil
}

// ActorLabel returns the actor id, or the system sentinel for
// automatic entries.
func (e *ActivityEntry) ActorLabel() string {
	if e.ActorID == nil {
		return SystemActor
	}
	return *e.ActorID
}
