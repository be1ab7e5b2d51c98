package domain

import "time"

// LeadSource indicates how a lead entered the system.
type LeadSource string

const (
	LeadSourcePartnerForm LeadSource = "partner_form"
	LeadSourceManual      LeadSource = "manual"
)

// IsValid checks if the source is one of the allowed values.
func (s LeadSource) IsValid() bool {
	return s == LeadSourcePartnerForm || s == LeadSourceManual
}

// SeedStatus is the status every new lead starts in.
const SeedStatus = "New Lead"

// Lead is a prospective customer moving through the status pipeline.
type Lead struct {
	ID                  string
	Name                string
	Email               string
	Phone               string
	Company             string
	Source              LeadSource
	PartnerCode         string
	CurrentStatus       string
	LastStatus          *string
	LastStatusUpdatedAt time.Time
	AssignedTo          *string
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsAssigned checks if the lead has an owner for follow-up.
func (l *Lead) IsAssigned() bool {
	return l.AssignedTo != nil
}

// DaysIdle returns the whole days the lead has sat in its current status.
func (l *Lead) DaysIdle(now time.Time) int {
	return DaysIdle(l.LastStatusUpdatedAt, now)
}
