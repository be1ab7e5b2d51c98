package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leadflowhq/leadflow/internal/domain"
	"github.com/leadflowhq/leadflow/internal/repository"
)

// CreateLeadParams carries the fields for lead intake.
type CreateLeadParams struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Source      domain.LeadSource
	PartnerCode string
	Notes       string
	ActorID     *string // nil for the public partner form
}

// LeadService handles lead intake. Status changes after creation go
// through TransitionService exclusively.
type LeadService struct {
	leadRepo     *repository.LeadRepository
	activityRepo *repository.ActivityRepository
}

// NewLeadService creates a new LeadService.
func NewLeadService(leadRepo *repository.LeadRepository, activityRepo *repository.ActivityRepository) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
	}
}

// CreateLead validates the contact details, creates the lead in the
// seed status and appends the lead_created audit entry.
func (s *LeadService) CreateLead(ctx context.Context, params CreateLeadParams) (*domain.Lead, error) {
	name := strings.TrimSpace(params.Name)
	email := strings.TrimSpace(params.Email)
	phone := strings.TrimSpace(params.Phone)

	if name == "" || (email == "" && phone == "") {
		return nil, domain.ErrEmptyContact
	}
	if params.Source != "" && !params.Source.IsValid() {
		return nil, domain.ErrInvalidSource
	}

	lead, err := s.leadRepo.Create(ctx, &domain.Lead{
		Name:          name,
		Email:         email,
		Phone:         phone,
		Company:       strings.TrimSpace(params.Company),
		Source:        params.Source,
		PartnerCode:   strings.TrimSpace(params.PartnerCode),
		CurrentStatus: domain.SeedStatus,
		Notes:         params.Notes,
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Lead created in %q via %s", lead.CurrentStatus, lead.Source)
	if lead.PartnerCode != "" {
		details += fmt.Sprintf(" (partner %s)", lead.PartnerCode)
	}

	entry := &domain.ActivityEntry{
		LeadID:  lead.ID,
		ActorID: params.ActorID,
		Action:  domain.ActionLeadCreated,
		Details: details,
	}
	if err := s.activityRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append lead-created entry: %w", err)
	}

	slog.Info("lead created",
		"lead_id", lead.ID,
		"source", lead.Source,
		"partner_code", lead.PartnerCode,
	)

	return lead, nil
}
