package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/xuri/excelize/v2"
)

// exportHeader is the column layout of the lead book export.
var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "Company", "Source", "Partner Code",
	"Current Status", "Last Status", "Status Updated", "Assigned To", "Created",
}

// handleExportLeads streams the full lead book as an XLSX workbook.
// @Summary Export leads
// @Description Download the full lead book as an XLSX workbook
// @Tags leads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /leads/export [get]
func (h *Handler) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leads, err := h.leadRepo.GetAll(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load leads")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Leads"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
			return
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
			return
		}
	}

	for i, lead := range leads {
		row := exportRow(lead)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
			return
		}
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		slog.Error("failed to write export workbook", "error", err)
	}
}

// exportRow flattens a lead into spreadsheet cells.
func exportRow(lead *domain.Lead) []interface{} {
	lastStatus := ""
	if lead.LastStatus != nil {
		lastStatus = *lead.LastStatus
	}
	assignedTo := ""
	if lead.AssignedTo != nil {
		assignedTo = *lead.AssignedTo
	}

	return []interface{}{
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Company,
		string(lead.Source),
		lead.PartnerCode,
		lead.CurrentStatus,
		lastStatus,
		lead.LastStatusUpdatedAt.Format(time.RFC3339),
		assignedTo,
		lead.CreatedAt.Format(time.RFC3339),
	}
}
