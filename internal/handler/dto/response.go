package dto

import (
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/leadflowhq/leadflow/internal/repository"
	"github.com/leadflowhq/leadflow/internal/service"
)

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Company             string    `json:"company"`
	Source              string    `json:"source"`
	PartnerCode         string    `json:"partner_code"`
	CurrentStatus       string    `json:"current_status"`
	LastStatus          *string   `json:"last_status"`
	LastStatusUpdatedAt time.Time `json:"last_status_updated_at"`
	AssignedTo          *string   `json:"assigned_to"`
	Notes               string    `json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// LeadsListResponse represents the response for GET /leads.
type LeadsListResponse struct {
	Leads  []LeadResponse `json:"leads"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// LeadDetailResponse represents a lead with its activity trail.
type LeadDetailResponse struct {
	Lead     LeadResponse        `json:"lead"`
	Activity []ActivityEntryInfo `json:"activity"`
}

// ActivityEntryInfo represents one audit record.
type ActivityEntryInfo struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// AvailableTransitionsResponse represents GET /leads/:id/transitions.
type AvailableTransitionsResponse struct {
	CurrentStatus        string   `json:"current_status"`
	AvailableTransitions []string `json:"available_transitions"`
}

// StatusDefinitionResponse represents one node of the status graph.
type StatusDefinitionResponse struct {
	Name         string   `json:"name"`
	NextStatuses []string `json:"next_statuses"`
	DaysLimit    *int     `json:"days_limit,omitempty"`
	AutoMoveTo   *string  `json:"auto_move_to,omitempty"`
	Terminal     bool     `json:"terminal"`
}

// StatusGraphResponse represents GET /statuses.
type StatusGraphResponse struct {
	Statuses []StatusDefinitionResponse `json:"statuses"`
}

// AttentionItemResponse represents one early-warning report row.
type AttentionItemResponse struct {
	Lead            LeadResponse `json:"lead"`
	DaysIdle        int          `json:"days_idle"`
	SuggestedAction string       `json:"suggested_action"`
}

// AttentionListResponse represents GET /leads/attention.
type AttentionListResponse struct {
	Items []AttentionItemResponse `json:"items"`
	Total int                     `json:"total"`
}

// SweepResponse acknowledges POST /sweep.
type SweepResponse struct {
	Moved int `json:"moved"`
}

// StatsResponse represents GET /stats.
type StatsResponse struct {
	TotalLeads            int            `json:"total_leads"`
	LeadsByStatus         map[string]int `json:"leads_by_status"`
	Unassigned            int            `json:"unassigned"`
	AutoMovedLast30Days   int            `json:"auto_moved_last_30_days"`
	ConversionRatePercent float64        `json:"conversion_rate_percent"`
}

// ToLeadResponse converts domain.Lead to LeadResponse.
func ToLeadResponse(lead *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                  lead.ID,
		Name:                lead.Name,
		Email:               lead.Email,
		Phone:               lead.Phone,
		Company:             lead.Company,
		Source:              string(lead.Source),
		PartnerCode:         lead.PartnerCode,
		CurrentStatus:       lead.CurrentStatus,
		LastStatus:          lead.LastStatus,
		LastStatusUpdatedAt: lead.LastStatusUpdatedAt,
		AssignedTo:          lead.AssignedTo,
		Notes:               lead.Notes,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
}

// ToActivityEntryInfo converts domain.ActivityEntry to ActivityEntryInfo.
// System entries are rendered with the "system" actor sentinel.
func ToActivityEntryInfo(entry *domain.ActivityEntry) ActivityEntryInfo {
	return ActivityEntryInfo{
		ID:        entry.ID,
		Actor:     entry.ActorLabel(),
		Action:    string(entry.Action),
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}

// ToStatusDefinitionResponse converts a graph node.
func ToStatusDefinitionResponse(def *domain.StatusDefinition) StatusDefinitionResponse {
	return StatusDefinitionResponse{
		Name:         def.Name,
		NextStatuses: def.NextStatuses,
		DaysLimit:    def.DaysLimit,
		AutoMoveTo:   def.AutoMoveTo,
		Terminal:     def.IsTerminal(),
	}
}

// ToAttentionItemResponse converts a service.AttentionItem.
func ToAttentionItemResponse(item service.AttentionItem) AttentionItemResponse {
	return AttentionItemResponse{
		Lead:            ToLeadResponse(item.Lead),
		DaysIdle:        item.DaysIdle,
		SuggestedAction: item.SuggestedAction,
	}
}

// ToStatsResponse converts repository.PipelineStats.
func ToStatsResponse(stats *repository.PipelineStats) StatsResponse {
	return StatsResponse{
		TotalLeads:            stats.TotalLeads,
		LeadsByStatus:         stats.LeadsByStatus,
		Unassigned:            stats.Unassigned,
		AutoMovedLast30Days:   stats.AutoMovedLast30Days,
		ConversionRatePercent: stats.ConversionRatePercent,
	}
}
