package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	services "github.com/nfredmond/project-manager/service"
)

// GetMemberships lists the caller's tenants with their role permissions.
func (c *AgencyController) GetMemberships(ctx *gin.Context) {
	memberships, err := c.service.ListMemberships(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to retrieve memberships", err)
		return
	}

	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, gin.H{
			"tenant":      m.Tenant,
			"role":        m.Role,
			"status":      m.Status,
			"permissions": services.DeriveRolePermissions(m.Role),
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"memberships": out, "total": len(out)})
}

func (c *AgencyController) SwitchTenant(ctx *gin.Context) {
	var req struct {
		TenantID string `json:"tenant_id" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.service.SwitchTenant(ctx.Request.Context(), middleware.UserID(ctx), req.TenantID); err != nil {
		c.respondError(ctx, "Failed to switch tenant", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Tenant switched", "tenant_id": req.TenantID})
}

// GetCurrentTenant returns the active tenant, the caller's role and its
// permissions.
func (c *AgencyController) GetCurrentTenant(ctx *gin.Context) {
	role := middleware.Role(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"tenant":      middleware.Tenant(ctx),
		"role":        role,
		"permissions": services.DeriveRolePermissions(role),
	})
}

func (c *AgencyController) UpdateTenantSettings(ctx *gin.Context) {
	var req services.TenantSettingsInput
	if !bindJSON(ctx, &req) {
		return
	}
	tenant, err := c.service.UpdateTenantSettings(ctx.Request.Context(), middleware.Tenant(ctx), middleware.Role(ctx), req)
	if err != nil {
		c.respondError(ctx, "Failed to update tenant settings", err)
		return
	}
	ctx.JSON(http.StatusOK, tenant)
}

func (c *AgencyController) GetProfile(ctx *gin.Context) {
	profile, err := c.service.GetProfile(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to retrieve profile", err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (c *AgencyController) UpdateProfile(ctx *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(ctx, &req) {
		return
	}
	profile, err := c.service.UpdateProfile(ctx.Request.Context(), middleware.UserID(ctx), req)
	if err != nil {
		c.respondError(ctx, "Failed to update profile", err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (c *AgencyController) CreateInvitation(ctx *gin.Context) {
	var req services.InvitationInput
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.service.CreateInvitation(ctx.Request.Context(), middleware.Tenant(ctx), middleware.Role(ctx), req)
	if err != nil {
		c.respondError(ctx, "Failed to create invitation", err)
		return
	}
	ctx.JSON(http.StatusCreated, result)
}

func (c *AgencyController) AcceptInvitation(ctx *gin.Context) {
	tenant, err := c.service.AcceptInvitation(ctx.Request.Context(), middleware.UserID(ctx), ctx.Param("token"))
	if err != nil {
		c.respondError(ctx, "Failed to accept invitation", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "tenant": tenant})
}
