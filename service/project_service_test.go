package services

import (
	"context"
	"testing"

	model "github.com/nfredmond/project-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestCreateProject(t *testing.T) {
	tests := []struct {
		name      string
		in        ProjectInput
		wantErr   error
		assertion func(t *testing.T, p *model.Project)
	}{
		{
			name: "defaults to draft",
			in:   ProjectInput{Name: "  Highway 49 Safety  ", Code: ptr(" H49 "), Budget: floatPtr(1250000)},
			assertion: func(t *testing.T, p *model.Project) {
				assert.NotEmpty(t, p.ID)
				assert.Equal(t, "Highway 49 Safety", p.Name)
				assert.Equal(t, "H49", *p.Code)
				assert.Equal(t, model.ProjectDraft, p.Status)
				assert.Equal(t, 1250000.0, p.Budget)
				assert.Nil(t, p.Client)
			},
		},
		{
			name: "explicit status",
			in:   ProjectInput{Name: "Transit hub", Status: model.ProjectActive},
			assertion: func(t *testing.T, p *model.Project) {
				assert.Equal(t, model.ProjectActive, p.Status)
				assert.Zero(t, p.Budget)
			},
		},
		{name: "name too short", in: ProjectInput{Name: " A "}, wantErr: ErrInvalidInput},
		{name: "unknown status", in: ProjectInput{Name: "Bridge", Status: "paused"}, wantErr: ErrInvalidInput},
		{name: "negative budget", in: ProjectInput{Name: "Bridge", Budget: floatPtr(-1)}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, _ := newTestService(t)
			tenant := createTenant(t, db, "demo", nil)

			project, err := svc.CreateProject(context.Background(), tenant.ID, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.assertion(t, project)
		})
	}
}

func TestUpdateProjectStatus(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	other := createTenant(t, db, "other", nil)
	project := createProject(t, db, tenant.ID, "Highway 49")

	require.NoError(t, svc.UpdateProjectStatus(ctx, tenant.ID, project.ID, model.ProjectOnHold))
	var stored model.Project
	require.NoError(t, db.First(&stored, "id = ?", project.ID).Error)
	assert.Equal(t, model.ProjectOnHold, stored.Status)

	assert.ErrorIs(t, svc.UpdateProjectStatus(ctx, other.ID, project.ID, model.ProjectClosed), ErrNotFound)
	assert.ErrorIs(t, svc.UpdateProjectStatus(ctx, tenant.ID, project.ID, "paused"), ErrInvalidInput)
}

func TestListProjectsAndDashboard(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestService(t)
	tenant := createTenant(t, db, "demo", nil)
	other := createTenant(t, db, "other", nil)

	rows := []any{
		&model.Project{TenantID: tenant.ID, Name: "Highway 49", Budget: 100, Spent: 20},
		&model.Project{TenantID: tenant.ID, Name: "Transit hub", Budget: 50, Spent: 5},
		&model.Project{TenantID: other.ID, Name: "Elsewhere", Budget: 999},
		&model.Grant{TenantID: tenant.ID, Name: "ATP", Stage: model.StageProspecting},
		&model.Grant{TenantID: tenant.ID, Name: "RAISE", Stage: model.StageSubmitted},
		&model.Grant{TenantID: tenant.ID, Name: "STIP", Stage: model.StageAwarded},
		&model.CommunityInput{TenantID: tenant.ID, Category: "safety"},
	}
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}

	projects, err := svc.ListProjects(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.Equal(t, BudgetSummary{TotalBudget: 150, TotalSpent: 25}, SummarizeBudget(projects))

	metrics, err := svc.DashboardMetrics(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, &DashboardMetrics{
		Projects:        2,
		OpenGrants:      2,
		CommunityInputs: 1,
		TotalBudget:     150,
		TotalSpent:      25,
	}, metrics)
}
