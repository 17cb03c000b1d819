package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	services "github.com/nfredmond/project-manager/service"
)

// GetActionCenter returns the ranked deadlines for the active tenant with
// totals by severity and by type. ?limit=N truncates the item list; the
// totals always cover every item.
func (c *AgencyController) GetActionCenter(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	tenant := middleware.Tenant(ctx)
	items, err := c.service.ActionCenter(ctx.Request.Context(), tenant)
	if err != nil {
		c.respondError(ctx, "Failed to build action center", err)
		return
	}

	totals := services.CountBySeverity(items)
	byType := services.CountByType(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items":  items,
		"totals": totals,
		"byType": byType,
	})
}

// SendDigest builds the action center digest for ?slug= (the default tenant
// when omitted) and sends it unless ?preview=true.
func (c *AgencyController) SendDigest(ctx *gin.Context) {
	slug := ctx.DefaultQuery("slug", c.defaultTenantSlug)
	preview, _ := strconv.ParseBool(ctx.DefaultQuery("preview", "false"))

	result, err := c.service.SendDigest(ctx.Request.Context(), slug, preview)
	if err != nil {
		c.respondError(ctx, "Failed to send digest", err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
