package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
)

var grantStages = map[model.GrantStage]bool{
	model.StageProspecting: true,
	model.StageDrafting:    true,
	model.StageSubmitted:   true,
	model.StageAwarded:     true,
	model.StageDenied:      true,
	model.StageReporting:   true,
}

type GrantInput struct {
	Name            string           `json:"name" binding:"required"`
	ProjectID       *string          `json:"project_id"`
	GrantType       *string          `json:"grant_type"`
	Stage           model.GrantStage `json:"stage"`
	FundingSource   *string          `json:"funding_source"`
	Deadline        *string          `json:"deadline"`
	RequestedAmount *float64         `json:"requested_amount" binding:"omitempty,gte=0"`
	MatchAmount     *float64         `json:"match_amount" binding:"omitempty,gte=0"`
	Summary         *string          `json:"summary"`
}

// ListGrants returns the pipeline ordered by deadline, undated grants last.
func (s *AgencyService) ListGrants(ctx context.Context, tenantID string) ([]model.Grant, error) {
	var grants []model.Grant
	if err := s.scoped(ctx, tenantID).
		Order("CASE WHEN deadline IS NULL THEN 1 ELSE 0 END, deadline asc").
		Find(&grants).Error; err != nil {
		s.logger.Error("failed to list grants", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return grants, nil
}

// CreateGrant stores the grant and announces it on the notification channels.
func (s *AgencyService) CreateGrant(ctx context.Context, tenantID string, in GrantInput) (*model.Grant, error) {
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		return nil, invalid("grant name is required")
	}
	stage := in.Stage
	if stage == "" {
		stage = model.StageProspecting
	}
	if !grantStages[stage] {
		return nil, invalid("invalid stage %q", stage)
	}
	if err := errors.Join(
		validDate("deadline", in.Deadline),
		nonNegative("requested_amount", in.RequestedAmount),
		nonNegative("match_amount", in.MatchAmount),
	); err != nil {
		return nil, err
	}
	projectID := trimmedOrNil(in.ProjectID)
	if projectID != nil {
		if err := s.ensureProject(ctx, tenantID, *projectID); err != nil {
			return nil, err
		}
	}

	grant := model.Grant{
		TenantID:        tenantID,
		ProjectID:       projectID,
		Name:            name,
		GrantType:       trimmedOrNil(in.GrantType),
		Stage:           stage,
		FundingSource:   trimmedOrNil(in.FundingSource),
		Deadline:        trimmedOrNil(in.Deadline),
		RequestedAmount: in.RequestedAmount,
		MatchAmount:     in.MatchAmount,
		Summary:         trimmedOrNil(in.Summary),
	}
	if err := s.db.WithContext(ctx).Create(&grant).Error; err != nil {
		return nil, fmt.Errorf("create grant: %w", err)
	}

	deadline := "TBD"
	if grant.Deadline != nil {
		deadline = *grant.Deadline
	}
	s.notifier.Dispatch(ctx, "New grant", fmt.Sprintf("%s was added to the pipeline (deadline %s).", grant.Name, deadline))
	s.logger.Info("grant created", zap.String("tenant_id", tenantID), zap.String("grant_id", grant.ID))
	return &grant, nil
}

func (s *AgencyService) UpdateGrantStage(ctx context.Context, tenantID, grantID string, stage model.GrantStage) error {
	if !grantStages[stage] {
		return invalid("invalid stage %q", stage)
	}
	return s.updateScoped(ctx, &model.Grant{}, tenantID, grantID, map[string]any{
		"stage":      stage,
		"updated_at": timeNow(),
	})
}
