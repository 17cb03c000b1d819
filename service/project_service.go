package services

import (
	"context"
	"fmt"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var projectStatuses = map[model.ProjectStatus]bool{
	model.ProjectDraft:     true,
	model.ProjectActive:    true,
	model.ProjectOnHold:    true,
	model.ProjectCompleted: true,
	model.ProjectClosed:    true,
}

var openGrantStages = []model.GrantStage{model.StageProspecting, model.StageDrafting, model.StageSubmitted}

type ProjectInput struct {
	Name        string              `json:"name" binding:"required"`
	Code        *string             `json:"code"`
	Status      model.ProjectStatus `json:"status"`
	Budget      *float64            `json:"budget" binding:"omitempty,gte=0"`
	Description *string             `json:"description"`
	Client      *string             `json:"client"`
	StartDate   *string             `json:"start_date"`
	EndDate     *string             `json:"end_date"`
	PED         *string             `json:"ped"`
}

// BudgetSummary totals budget and spending across projects.
type BudgetSummary struct {
	TotalBudget float64 `json:"totalBudget"`
	TotalSpent  float64 `json:"totalSpent"`
}

func SummarizeBudget(projects []model.Project) BudgetSummary {
	var summary BudgetSummary
	for _, p := range projects {
		summary.TotalBudget += p.Budget
		summary.TotalSpent += p.Spent
	}
	return summary
}

// DashboardMetrics are the headline numbers on the tenant dashboard.
type DashboardMetrics struct {
	Projects        int64   `json:"projects"`
	OpenGrants      int64   `json:"open_grants"`
	CommunityInputs int64   `json:"community_inputs"`
	TotalBudget     float64 `json:"total_budget"`
	TotalSpent      float64 `json:"total_spent"`
}

func (s *AgencyService) ListProjects(ctx context.Context, tenantID string) ([]model.Project, error) {
	var projects []model.Project
	if err := s.scoped(ctx, tenantID).Order("created_at desc").Find(&projects).Error; err != nil {
		s.logger.Error("failed to list projects", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	return projects, nil
}

func (s *AgencyService) CreateProject(ctx context.Context, tenantID string, in ProjectInput) (*model.Project, error) {
	name := stringOr(&in.Name, "")
	if len([]rune(name)) < 2 {
		return nil, invalid("project name is required")
	}
	status := in.Status
	if status == "" {
		status = model.ProjectDraft
	}
	if !projectStatuses[status] {
		return nil, invalid("invalid status %q", status)
	}
	var budget float64
	if in.Budget != nil {
		if *in.Budget < 0 {
			return nil, invalid("budget must be non-negative")
		}
		budget = *in.Budget
	}

	project := model.Project{
		TenantID:    tenantID,
		Name:        name,
		Code:        trimmedOrNil(in.Code),
		Client:      trimmedOrNil(in.Client),
		Status:      status,
		Description: trimmedOrNil(in.Description),
		StartDate:   trimmedOrNil(in.StartDate),
		EndDate:     trimmedOrNil(in.EndDate),
		PED:         trimmedOrNil(in.PED),
		Budget:      budget,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		s.logger.Error("failed to create project", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("project created", zap.String("tenant_id", tenantID), zap.String("project_id", project.ID))
	return &project, nil
}

func (s *AgencyService) UpdateProjectStatus(ctx context.Context, tenantID, projectID string, status model.ProjectStatus) error {
	if !projectStatuses[status] {
		return invalid("invalid status %q", status)
	}
	return s.updateScoped(ctx, &model.Project{}, tenantID, projectID, map[string]any{
		"status":     status,
		"updated_at": timeNow(),
	})
}

// DashboardMetrics gathers the counts in parallel.
func (s *AgencyService) DashboardMetrics(ctx context.Context, tenantID string) (*DashboardMetrics, error) {
	var (
		metrics  DashboardMetrics
		projects []model.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Select("budget", "spent").Find(&projects).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Model(&model.Grant{}).
			Where("stage IN ?", openGrantStages).
			Count(&metrics.OpenGrants).Error
	})
	g.Go(func() error {
		return s.scoped(gctx, tenantID).Model(&model.CommunityInput{}).Count(&metrics.CommunityInputs).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}

	summary := SummarizeBudget(projects)
	metrics.Projects = int64(len(projects))
	metrics.TotalBudget = summary.TotalBudget
	metrics.TotalSpent = summary.TotalSpent
	return &metrics, nil
}
