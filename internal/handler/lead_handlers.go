package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/leadflowhq/leadflow/internal/handler/dto"
	"github.com/leadflowhq/leadflow/internal/middleware"
	"github.com/leadflowhq/leadflow/internal/repository"
	"github.com/leadflowhq/leadflow/internal/service"
)

// handlePublicCreateLead accepts a lead from the public partner web form.
// @Summary Submit a lead (public)
// @Description Public partner form intake. Creates a lead in the seed status.
// @Tags public
// @Accept json
// @Produce json
// @Param request body dto.PublicLeadRequest true "Lead submission"
// @Success 201 {object} dto.LeadResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /public/leads [post]
func (h *Handler) handlePublicCreateLead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "INVALID_REQUEST", "method not allowed")
		return
	}

	var req dto.PublicLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	lead, err := h.leadService.CreateLead(r.Context(), service.CreateLeadParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Source:      domain.LeadSourcePartnerForm,
		PartnerCode: req.PartnerCode,
		Notes:       req.Message,
		ActorID:     nil,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToLeadResponse(lead))
}

// handleCreateLead creates a lead on behalf of a staff user.
// @Summary Create a lead
// @Description Creates a lead manually. The lead starts in the seed status.
// @Tags leads
// @Accept json
// @Produce json
// @Param request body dto.CreateLeadRequest true "Lead creation request"
// @Success 201 {object} dto.LeadResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /leads [post]
func (h *Handler) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	lead, err := h.leadService.CreateLead(ctx, service.CreateLeadParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Source:      domain.LeadSourceManual,
		PartnerCode: req.PartnerCode,
		Notes:       req.Notes,
		ActorID:     &user.ID,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToLeadResponse(lead))
}

// handleGetLead retrieves a lead with its activity trail.
// @Summary Get lead details
// @Description Get full lead details including the activity log
// @Tags leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} dto.LeadDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *Handler) handleGetLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leadID, ok := extractLeadID(w, r)
	if !ok {
		return
	}

	lead, err := h.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	entries, err := h.activityRepo.GetByLeadID(ctx, leadID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch activity")
		return
	}

	response := dto.LeadDetailResponse{
		Lead:     dto.ToLeadResponse(lead),
		Activity: make([]dto.ActivityEntryInfo, len(entries)),
	}
	for i, entry := range entries {
		response.Activity[i] = dto.ToActivityEntryInfo(entry)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleListLeads returns a list of leads with filters.
// @Summary List leads
// @Description Get a list of leads with optional filters
// @Tags leads
// @Produce json
// @Param status query string false "Comma-separated statuses: RNR,Contacted"
// @Param assignee query string false "Filter by assignee: 'me' or user UUID"
// @Param unassigned query bool false "Show only unassigned leads"
// @Param source query string false "Filter by source: partner_form or manual"
// @Param partner query string false "Filter by partner code"
// @Param sort query string false "Sort fields: -created_at,name"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.LeadsListResponse
// @Security BearerAuth
// @Router /leads [get]
func (h *Handler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	query := r.URL.Query()

	var statuses []string
	if statusParam := query.Get("status"); statusParam != "" {
		statuses = splitAndTrim(statusParam, ",")
	}

	var assignedTo *string
	unassigned := false
	if assigneeParam := query.Get("assignee"); assigneeParam != "" {
		if assigneeParam == "me" {
			assignedTo = &user.ID
		} else {
			assignedTo = &assigneeParam
		}
	}
	if query.Get("unassigned") == "true" {
		unassigned = true
	}

	var source *string
	if sourceParam := query.Get("source"); sourceParam != "" {
		source = &sourceParam
	}

	var partnerCode *string
	if partnerParam := query.Get("partner"); partnerParam != "" {
		partnerCode = &partnerParam
	}

	var sort []string
	if sortParam := query.Get("sort"); sortParam != "" {
		sort = splitAndTrim(sortParam, ",")
	}

	limit := 50
	if limitParam := query.Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	offset := 0
	if offsetParam := query.Get("offset"); offsetParam != "" {
		if n, err := strconv.Atoi(offsetParam); err == nil && n >= 0 {
			offset = n
		}
	}

	leads, total, err := h.leadRepo.List(ctx, repository.LeadListFilters{
		Statuses:    statuses,
		AssignedTo:  assignedTo,
		Unassigned:  unassigned,
		Source:      source,
		PartnerCode: partnerCode,
		Sort:        sort,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list leads")
		return
	}

	response := dto.LeadsListResponse{
		Leads:  make([]dto.LeadResponse, len(leads)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, lead := range leads {
		response.Leads[i] = dto.ToLeadResponse(lead)
	}

	respondJSON(w, http.StatusOK, response)
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
