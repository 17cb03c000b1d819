package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	model "github.com/nfredmond/project-manager/models"
	services "github.com/nfredmond/project-manager/service"
)

// TenantResolver finds the user's active tenant and role.
type TenantResolver interface {
	ActiveTenant(ctx context.Context, userID string) (*model.Tenant, model.TenantRole, error)
}

// ActiveTenant loads the active tenant for the authenticated user.
func ActiveTenant(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, role, err := resolver.ActiveTenant(c.Request.Context(), UserID(c))
		if err != nil {
			if errors.Is(err, services.ErrTenantRequired) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Select a tenant first"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve tenant", "details": err.Error()})
			return
		}
		c.Set(tenantKey, tenant)
		c.Set(roleKey, role)
		c.Next()
	}
}

// RequirePermission rejects roles that lack the permission selected by allow.
func RequirePermission(allow func(services.RolePermissions) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(services.DeriveRolePermissions(Role(c))) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func Tenant(c *gin.Context) *model.Tenant {
	if v, ok := c.Get(tenantKey); ok {
		if tenant, ok := v.(*model.Tenant); ok {
			return tenant
		}
	}
	return nil
}

func Role(c *gin.Context) model.TenantRole {
	if v, ok := c.Get(roleKey); ok {
		if role, ok := v.(model.TenantRole); ok {
			return role
		}
	}
	return ""
}
