package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	services "github.com/nfredmond/project-manager/service"
	"go.uber.org/zap"
)

// AgencyController serves the tenant API on top of the service layer.
type AgencyController struct {
	service           *services.AgencyService
	documents         *services.DocumentService
	ai                *services.AIService
	defaultTenantSlug string
	logger            *zap.Logger
}

func NewAgencyController(service *services.AgencyService, documents *services.DocumentService, ai *services.AIService, defaultTenantSlug string, logger *zap.Logger) *AgencyController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgencyController{
		service:           service,
		documents:         documents,
		ai:                ai,
		defaultTenantSlug: defaultTenantSlug,
		logger:            logger,
	}
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrTenantRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvitationExpired):
		return http.StatusGone
	case errors.Is(err, services.ErrAIRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrStorageDisabled), errors.Is(err, services.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (c *AgencyController) respondError(ctx *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error(message, zap.String("route", ctx.FullPath()), zap.Error(err))
	}
	_ = ctx.Error(err)
	ctx.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(ctx *gin.Context, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}
