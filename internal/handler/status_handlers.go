package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leadflowhq/leadflow/internal/handler/dto"
	"github.com/leadflowhq/leadflow/internal/middleware"
)

// handleAvailableTransitions lists the manual destinations for a lead.
// @Summary List available transitions
// @Description Destinations the lead's current status allows, for the "Change Status" menu
// @Tags statuses
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} dto.AvailableTransitionsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /leads/{id}/transitions [get]
func (h *Handler) handleAvailableTransitions(w http.ResponseWriter, r *http.Request) {
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

	transitions, err := h.transitionService.AvailableTransitions(ctx, lead.CurrentStatus)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.AvailableTransitionsResponse{
		CurrentStatus:        lead.CurrentStatus,
		AvailableTransitions: transitions,
	})
}

// handleChangeStatus applies a manual status transition.
// @Summary Change lead status
// @Description Move a lead to a new status; the transition must be allowed by the status graph
// @Tags statuses
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body dto.ChangeStatusRequest true "Status change request"
// @Success 200 {object} dto.LeadResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /leads/{id}/status [post]
func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	leadID, ok := extractLeadID(w, r)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	newStatus := strings.TrimSpace(req.NewStatus)
	if newStatus == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "new_status is required")
		return
	}

	lead, err := h.transitionService.ApplyManualTransition(ctx, leadID, newStatus, user.ID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToLeadResponse(lead))
}

// handleListStatuses returns the full status graph.
// @Summary List status definitions
// @Description The full status graph for dashboard rendering
// @Tags statuses
// @Produce json
// @Success 200 {object} dto.StatusGraphResponse
// @Security BearerAuth
// @Router /statuses [get]
func (h *Handler) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	graph, err := h.statusRepo.GetGraph(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	defs := graph.Definitions()
	response := dto.StatusGraphResponse{
		Statuses: make([]dto.StatusDefinitionResponse, len(defs)),
	}
	for i, def := range defs {
		response.Statuses[i] = dto.ToStatusDefinitionResponse(def)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleAttention returns the early-warning report.
// @Summary Leads requiring attention
// @Description Leads due to auto-transition within the next day, or already overdue
// @Tags statuses
// @Produce json
// @Success 200 {object} dto.AttentionListResponse
// @Security BearerAuth
// @Router /leads/attention [get]
func (h *Handler) handleAttention(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.transitionService.LeadsRequiringAttention(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	response := dto.AttentionListResponse{
		Items: make([]dto.AttentionItemResponse, len(items)),
		Total: len(items),
	}
	for i, item := range items {
		response.Items[i] = dto.ToAttentionItemResponse(item)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleTriggerSweep runs the idle sweep on demand.
// @Summary Trigger the idle sweep
// @Description Runs the idle sweep immediately; a sweep already in flight makes this a no-op
// @Tags statuses
// @Produce json
// @Success 200 {object} dto.SweepResponse
// @Security BearerAuth
// @Router /sweep [post]
func (h *Handler) handleTriggerSweep(w http.ResponseWriter, r *http.Request) {
	moved, err := h.transitionService.RunIdleSweep(r.Context())
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.SweepResponse{Moved: moved})
}

// handleGetStats returns pipeline statistics.
// @Summary Pipeline statistics
// @Description Lead counts by status plus derived totals
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsRepo.GetPipelineStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute stats")
		return
	}

	respondJSON(w, http.StatusOK, dto.ToStatsResponse(stats))
}
