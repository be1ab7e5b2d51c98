package dto

// CreateLeadRequest represents the request body for POST /leads.
type CreateLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	PartnerCode string `json:"partner_code,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// PublicLeadRequest represents the request body for the public partner form.
type PublicLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	PartnerCode string `json:"partner_code,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ChangeStatusRequest represents the request body for POST /leads/:id/status.
type ChangeStatusRequest struct {
	NewStatus string `json:"new_status"`
}

// ListLeadsFilters represents query parameters for GET /leads.
type ListLeadsFilters struct {
	Statuses    []string // ?status=RNR,Contacted
	AssignedTo  *string  // ?assignee=<uuid> or ?assignee=me
	Unassigned  bool     // ?unassigned=true
	Source      *string  // ?source=partner_form
	PartnerCode *string  // ?partner=ACME
	Sort        []string // ?sort=-created_at
	Limit       int      // ?limit=50
	Offset      int      // ?offset=0
}
