package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	model "github.com/nfredmond/project-manager/models"
)

type SalesTaxInput struct {
	Measure      string   `json:"measure" binding:"required"`
	Revenue      *float64 `json:"revenue" binding:"omitempty,gte=0"`
	Expenditures *float64 `json:"expenditures" binding:"omitempty,gte=0"`
	Status       *string  `json:"status"`
}

func (s *AgencyService) ListSalesTaxPrograms(ctx context.Context, tenantID string) ([]model.SalesTaxProgram, error) {
	var programs []model.SalesTaxProgram
	if err := s.scoped(ctx, tenantID).Order("created_at desc").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (s *AgencyService) CreateSalesTaxProgram(ctx context.Context, tenantID string, in SalesTaxInput) (*model.SalesTaxProgram, error) {
	measure := strings.TrimSpace(in.Measure)
	if len([]rune(measure)) < 2 {
		return nil, invalid("measure name is required")
	}
	if err := errors.Join(
		nonNegative("revenue", in.Revenue),
		nonNegative("expenditures", in.Expenditures),
	); err != nil {
		return nil, err
	}

	program := model.SalesTaxProgram{
		TenantID:     tenantID,
		Measure:      measure,
		Revenue:      in.Revenue,
		Expenditures: in.Expenditures,
		Status:       stringOr(in.Status, "draft"),
	}
	if err := s.db.WithContext(ctx).Create(&program).Error; err != nil {
		return nil, fmt.Errorf("create sales tax program: %w", err)
	}
	return &program, nil
}

func (s *AgencyService) UpdateSalesTaxStatus(ctx context.Context, tenantID, programID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return invalid("status is required")
	}
	return s.updateScoped(ctx, &model.SalesTaxProgram{}, tenantID, programID, map[string]any{"status": status})
}
