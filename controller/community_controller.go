package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	model "github.com/nfredmond/project-manager/models"
	services "github.com/nfredmond/project-manager/service"
)

// SubmitCommunityInput is the public portal endpoint; it needs no session.
func (c *AgencyController) SubmitCommunityInput(ctx *gin.Context) {
	var req services.CommunitySubmission
	if !bindJSON(ctx, &req) {
		return
	}
	input, err := c.service.SubmitCommunityInput(ctx.Request.Context(), ctx.Param("slug"), req)
	if err != nil {
		c.respondError(ctx, "Failed to submit community input", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Thank you for your input", "id": input.ID})
}

func (c *AgencyController) GetPublicCommunityInputs(ctx *gin.Context) {
	inputs, err := c.service.ApprovedCommunityInputs(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		c.respondError(ctx, "Failed to retrieve community inputs", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"inputs": inputs, "total": len(inputs)})
}

func (c *AgencyController) GetCommunityInputs(ctx *gin.Context) {
	inputs, err := c.service.ListCommunityInputs(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve community inputs", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"inputs": inputs, "total": len(inputs)})
}

func (c *AgencyController) ReviewCommunityInput(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	err := c.service.ReviewCommunityInput(ctx.Request.Context(), middleware.Tenant(ctx).ID, middleware.Role(ctx),
		ctx.Param("id"), model.CommunityStatus(req.Status))
	if err != nil {
		c.respondError(ctx, "Failed to review community input", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Community input updated"})
}
