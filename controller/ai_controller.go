package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	services "github.com/nfredmond/project-manager/service"
)

func (c *AgencyController) GenerateGrantNarrative(ctx *gin.Context) {
	var req services.GrantNarrativeInput
	if !bindJSON(ctx, &req) {
		return
	}
	text, err := c.ai.GenerateGrantNarrative(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Unable to generate narrative", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"text": text})
}

func (c *AgencyController) SummarizeMeeting(ctx *gin.Context) {
	var req services.MeetingSummaryInput
	if !bindJSON(ctx, &req) {
		return
	}
	summary, err := c.ai.SummarizeMeeting(ctx.Request.Context(), req)
	if err != nil {
		c.respondError(ctx, "Unable to generate summary", err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
