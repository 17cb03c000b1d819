package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var phaseTypes = map[model.PhaseType]bool{
	model.PhasePE:     true,
	model.PhaseRW:     true,
	model.PhaseRWUtil: true,
	model.PhaseCON:    true,
	model.PhaseCE:     true,
}

var phaseStatuses = map[model.PhaseStatus]bool{
	model.PhasePlanned:    true,
	model.PhaseAuthorized: true,
	model.PhaseInProgress: true,
	model.PhaseSubmitted:  true,
	model.PhaseClosed:     true,
}

type PhaseInput struct {
	ProjectID         string            `json:"project_id" binding:"required"`
	Phase             model.PhaseType   `json:"phase" binding:"required"`
	Status            model.PhaseStatus `json:"status"`
	E76Number         *string           `json:"e76_number"`
	AuthorizationDate *string           `json:"authorization_date"`
	PedDueDate        *string           `json:"ped_due_date"`
	NepaStatus        *string           `json:"nepa_status"`
	PSECertified      bool              `json:"ps_e_certified"`
	FederalFunds      *float64          `json:"federal_funds" binding:"omitempty,gte=0"`
	StateFunds        *float64          `json:"state_funds" binding:"omitempty,gte=0"`
	LocalFunds        *float64          `json:"local_funds" binding:"omitempty,gte=0"`
	DBEGoal           *float64          `json:"dbe_goal" binding:"omitempty,gte=0,lte=100"`
	Notes             *string           `json:"notes"`
}

type InvoiceInput struct {
	ProjectID     string          `json:"project_id" binding:"required"`
	Phase         model.PhaseType `json:"phase" binding:"required"`
	InvoiceNumber *string         `json:"invoice_number"`
	PeriodStart   *string         `json:"period_start"`
	PeriodEnd     *string         `json:"period_end"`
	SubmittedOn   *string         `json:"submitted_on"`
	TotalAmount   float64         `json:"total_amount" binding:"gte=0"`
	FederalShare  float64         `json:"federal_share" binding:"gte=0"`
	StateShare    float64         `json:"state_share" binding:"gte=0"`
	LocalShare    float64         `json:"local_share" binding:"gte=0"`
	DocumentURL   *string         `json:"document_url"`
}

// ensureProject checks that projectID exists inside the tenant.
func (s *AgencyService) ensureProject(ctx context.Context, tenantID, projectID string) error {
	var project model.Project
	err := s.scoped(ctx, tenantID).Select("id").First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return err
}

// validDate checks an optional YYYY-MM-DD form value.
func validDate(field string, value *string) error {
	v := trimmedOrNil(value)
	if v == nil {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, *v); err != nil {
		return invalid("%s must be a YYYY-MM-DD date", field)
	}
	return nil
}

func nonNegative(field string, value *float64) error {
	if value != nil && *value < 0 {
		return invalid("%s must be non-negative", field)
	}
	return nil
}

func (s *AgencyService) ListPhases(ctx context.Context, tenantID string) ([]model.CaltransPhase, error) {
	var phases []model.CaltransPhase
	if err := s.scoped(ctx, tenantID).Order("ped_due_date asc").Find(&phases).Error; err != nil {
		s.logger.Error("failed to list caltrans phases", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return phases, nil
}

func (s *AgencyService) CreatePhase(ctx context.Context, tenantID string, in PhaseInput) (*model.CaltransPhase, error) {
	if !phaseTypes[in.Phase] {
		return nil, invalid("unknown phase %q", in.Phase)
	}
	status := in.Status
	if status == "" {
		status = model.PhasePlanned
	}
	if !phaseStatuses[status] {
		return nil, invalid("invalid status %q", status)
	}
	if err := errors.Join(
		validDate("authorization_date", in.AuthorizationDate),
		validDate("ped_due_date", in.PedDueDate),
		nonNegative("federal_funds", in.FederalFunds),
		nonNegative("state_funds", in.StateFunds),
		nonNegative("local_funds", in.LocalFunds),
	); err != nil {
		return nil, err
	}
	if in.DBEGoal != nil && (*in.DBEGoal < 0 || *in.DBEGoal > 100) {
		return nil, invalid("dbe_goal must be between 0 and 100")
	}
	if err := s.ensureProject(ctx, tenantID, in.ProjectID); err != nil {
		return nil, err
	}

	phase := model.CaltransPhase{
		TenantID:          tenantID,
		ProjectID:         in.ProjectID,
		Phase:             in.Phase,
		Status:            status,
		E76Number:         trimmedOrNil(in.E76Number),
		AuthorizationDate: trimmedOrNil(in.AuthorizationDate),
		PedDueDate:        trimmedOrNil(in.PedDueDate),
		NepaStatus:        trimmedOrNil(in.NepaStatus),
		PSECertified:      in.PSECertified,
		FederalFunds:      in.FederalFunds,
		StateFunds:        in.StateFunds,
		LocalFunds:        in.LocalFunds,
		DBEGoal:           in.DBEGoal,
		Notes:             trimmedOrNil(in.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&phase).Error; err != nil {
		return nil, fmt.Errorf("create caltrans phase: %w", err)
	}
	s.logger.Info("caltrans phase created", zap.String("tenant_id", tenantID), zap.String("phase", string(phase.Phase)))
	return &phase, nil
}

func (s *AgencyService) UpdatePhaseStatus(ctx context.Context, tenantID, phaseID string, status model.PhaseStatus) error {
	if !phaseStatuses[status] {
		return invalid("invalid status %q", status)
	}
	return s.updateScoped(ctx, &model.CaltransPhase{}, tenantID, phaseID, map[string]any{"status": status})
}

func (s *AgencyService) ListInvoices(ctx context.Context, tenantID string) ([]model.CaltransInvoice, error) {
	var invoices []model.CaltransInvoice
	if err := s.scoped(ctx, tenantID).Order("created_at desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *AgencyService) CreateInvoice(ctx context.Context, tenantID string, in InvoiceInput) (*model.CaltransInvoice, error) {
	if !phaseTypes[in.Phase] {
		return nil, invalid("unknown phase %q", in.Phase)
	}
	if err := errors.Join(
		validDate("period_start", in.PeriodStart),
		validDate("period_end", in.PeriodEnd),
		validDate("submitted_on", in.SubmittedOn),
	); err != nil {
		return nil, err
	}
	for field, v := range map[string]float64{
		"total_amount":  in.TotalAmount,
		"federal_share": in.FederalShare,
		"state_share":   in.StateShare,
		"local_share":   in.LocalShare,
	} {
		if v < 0 {
			return nil, invalid("%s must be non-negative", field)
		}
	}
	if err := s.ensureProject(ctx, tenantID, in.ProjectID); err != nil {
		return nil, err
	}

	invoice := model.CaltransInvoice{
		TenantID:      tenantID,
		ProjectID:     in.ProjectID,
		Phase:         in.Phase,
		InvoiceNumber: trimmedOrNil(in.InvoiceNumber),
		PeriodStart:   trimmedOrNil(in.PeriodStart),
		PeriodEnd:     trimmedOrNil(in.PeriodEnd),
		SubmittedOn:   trimmedOrNil(in.SubmittedOn),
		Status:        "draft",
		TotalAmount:   in.TotalAmount,
		FederalShare:  in.FederalShare,
		StateShare:    in.StateShare,
		LocalShare:    in.LocalShare,
		DocumentURL:   trimmedOrNil(in.DocumentURL),
	}
	if err := s.db.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, fmt.Errorf("create caltrans invoice: %w", err)
	}
	return &invoice, nil
}
