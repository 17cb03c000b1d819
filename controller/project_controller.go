package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	model "github.com/nfredmond/project-manager/models"
	services "github.com/nfredmond/project-manager/service"
)

func (c *AgencyController) GetProjects(ctx *gin.Context) {
	projects, err := c.service.ListProjects(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve projects", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
		"budget":   services.SummarizeBudget(projects),
	})
}

func (c *AgencyController) CreateProject(ctx *gin.Context) {
	var req services.ProjectInput
	if !bindJSON(ctx, &req) {
		return
	}
	project, err := c.service.CreateProject(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create project", err)
		return
	}
	ctx.JSON(http.StatusCreated, project)
}

func (c *AgencyController) UpdateProjectStatus(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	err := c.service.UpdateProjectStatus(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), model.ProjectStatus(req.Status))
	if err != nil {
		c.respondError(ctx, "Failed to update project status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Project status updated"})
}

func (c *AgencyController) GetDashboard(ctx *gin.Context) {
	metrics, err := c.service.DashboardMetrics(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to load dashboard", err)
		return
	}
	ctx.JSON(http.StatusOK, metrics)
}
