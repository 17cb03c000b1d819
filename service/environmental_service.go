package services

import (
	"context"
	"fmt"
	"strings"

	model "github.com/nfredmond/project-manager/models"
	"gorm.io/gorm/clause"
)

type EnvironmentalInput struct {
	ProjectID    string  `json:"project_id" binding:"required"`
	Factor       string  `json:"factor" binding:"required"`
	Status       string  `json:"status" binding:"required"`
	Significance *string `json:"significance"`
	Mitigation   *string `json:"mitigation"`
	LeadAgency   *string `json:"lead_agency"`
	DocURL       *string `json:"doc_url"`
	DueDate      *string `json:"due_date"`
}

func (s *AgencyService) ListEnvironmentalFactors(ctx context.Context, tenantID, projectID string) ([]model.EnvironmentalFactor, error) {
	query := s.scoped(ctx, tenantID)
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	var factors []model.EnvironmentalFactor
	if err := query.Order("factor asc").Find(&factors).Error; err != nil {
		return nil, err
	}
	return factors, nil
}

// UpsertEnvironmentalFactor creates or replaces the checklist row for
// (project_id, factor).
func (s *AgencyService) UpsertEnvironmentalFactor(ctx context.Context, tenantID string, in EnvironmentalInput) (*model.EnvironmentalFactor, error) {
	factor := strings.TrimSpace(in.Factor)
	status := strings.TrimSpace(in.Status)
	if factor == "" || status == "" {
		return nil, invalid("factor and status are required")
	}
	if err := validDate("due_date", in.DueDate); err != nil {
		return nil, err
	}
	if err := s.ensureProject(ctx, tenantID, in.ProjectID); err != nil {
		return nil, err
	}

	row := model.EnvironmentalFactor{
		TenantID:     tenantID,
		ProjectID:    in.ProjectID,
		Factor:       factor,
		Status:       status,
		Significance: trimmedOrNil(in.Significance),
		Mitigation:   trimmedOrNil(in.Mitigation),
		LeadAgency:   trimmedOrNil(in.LeadAgency),
		DocURL:       trimmedOrNil(in.DocURL),
		DueDate:      trimmedOrNil(in.DueDate),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "factor"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "significance", "mitigation", "lead_agency", "doc_url", "due_date",
		}),
	}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("upsert environmental factor: %w", err)
	}

	var stored model.EnvironmentalFactor
	if err := s.scoped(ctx, tenantID).
		Where("project_id = ? AND factor = ?", in.ProjectID, factor).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
