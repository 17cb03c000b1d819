package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	model "github.com/nfredmond/project-manager/models"
	services "github.com/nfredmond/project-manager/service"
)

// Caltrans LAPM

func (c *AgencyController) GetPhases(ctx *gin.Context) {
	phases, err := c.service.ListPhases(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve phases", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"phases": phases, "total": len(phases)})
}

func (c *AgencyController) CreatePhase(ctx *gin.Context) {
	var req services.PhaseInput
	if !bindJSON(ctx, &req) {
		return
	}
	phase, err := c.service.CreatePhase(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create phase", err)
		return
	}
	ctx.JSON(http.StatusCreated, phase)
}

func (c *AgencyController) UpdatePhaseStatus(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	err := c.service.UpdatePhaseStatus(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), model.PhaseStatus(req.Status))
	if err != nil {
		c.respondError(ctx, "Failed to update phase status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Phase status updated"})
}

func (c *AgencyController) GetInvoices(ctx *gin.Context) {
	invoices, err := c.service.ListInvoices(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve invoices", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"invoices": invoices, "total": len(invoices)})
}

func (c *AgencyController) CreateInvoice(ctx *gin.Context) {
	var req services.InvoiceInput
	if !bindJSON(ctx, &req) {
		return
	}
	invoice, err := c.service.CreateInvoice(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create invoice", err)
		return
	}
	ctx.JSON(http.StatusCreated, invoice)
}

// Grants

func (c *AgencyController) GetGrants(ctx *gin.Context) {
	grants, err := c.service.ListGrants(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve grants", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"grants": grants, "total": len(grants)})
}

func (c *AgencyController) CreateGrant(ctx *gin.Context) {
	var req services.GrantInput
	if !bindJSON(ctx, &req) {
		return
	}
	grant, err := c.service.CreateGrant(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create grant", err)
		return
	}
	ctx.JSON(http.StatusCreated, grant)
}

func (c *AgencyController) UpdateGrantStage(ctx *gin.Context) {
	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	err := c.service.UpdateGrantStage(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), model.GrantStage(req.Stage))
	if err != nil {
		c.respondError(ctx, "Failed to update grant stage", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Grant stage updated"})
}

// Meetings

func (c *AgencyController) GetMeetings(ctx *gin.Context) {
	meetings, err := c.service.ListMeetings(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve meetings", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"meetings": meetings, "total": len(meetings)})
}

func (c *AgencyController) CreateMeeting(ctx *gin.Context) {
	var req services.MeetingInput
	if !bindJSON(ctx, &req) {
		return
	}
	meeting, err := c.service.CreateMeeting(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create meeting", err)
		return
	}
	ctx.JSON(http.StatusCreated, meeting)
}

func (c *AgencyController) UpdateMeetingStatus(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.service.UpdateMeetingStatus(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), req.Status); err != nil {
		c.respondError(ctx, "Failed to update meeting status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Meeting status updated"})
}

// Public records requests

func (c *AgencyController) GetRecordsRequests(ctx *gin.Context) {
	requests, err := c.service.ListRecordsRequests(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve records requests", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": requests, "total": len(requests)})
}

func (c *AgencyController) CreateRecordsRequest(ctx *gin.Context) {
	var req services.RecordsRequestInput
	if !bindJSON(ctx, &req) {
		return
	}
	request, err := c.service.CreateRecordsRequest(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create records request", err)
		return
	}
	ctx.JSON(http.StatusCreated, request)
}

func (c *AgencyController) UpdateRecordsRequestStatus(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	err := c.service.UpdateRecordsRequestStatus(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), model.RequestStatus(req.Status))
	if err != nil {
		c.respondError(ctx, "Failed to update records request status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Records request status updated"})
}

// Environmental review

func (c *AgencyController) GetEnvironmentalFactors(ctx *gin.Context) {
	factors, err := c.service.ListEnvironmentalFactors(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Query("project_id"))
	if err != nil {
		c.respondError(ctx, "Failed to retrieve environmental factors", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"factors": factors, "total": len(factors)})
}

func (c *AgencyController) UpsertEnvironmentalFactor(ctx *gin.Context) {
	var req services.EnvironmentalInput
	if !bindJSON(ctx, &req) {
		return
	}
	factor, err := c.service.UpsertEnvironmentalFactor(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to save environmental factor", err)
		return
	}
	ctx.JSON(http.StatusOK, factor)
}

// Sales tax

func (c *AgencyController) GetSalesTaxPrograms(ctx *gin.Context) {
	programs, err := c.service.ListSalesTaxPrograms(ctx.Request.Context(), middleware.Tenant(ctx).ID)
	if err != nil {
		c.respondError(ctx, "Failed to retrieve sales tax programs", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"programs": programs, "total": len(programs)})
}

func (c *AgencyController) CreateSalesTaxProgram(ctx *gin.Context) {
	var req services.SalesTaxInput
	if !bindJSON(ctx, &req) {
		return
	}
	program, err := c.service.CreateSalesTaxProgram(ctx.Request.Context(), middleware.Tenant(ctx).ID, req)
	if err != nil {
		c.respondError(ctx, "Failed to create sales tax program", err)
		return
	}
	ctx.JSON(http.StatusCreated, program)
}

func (c *AgencyController) UpdateSalesTaxStatus(ctx *gin.Context) {
	var req statusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.service.UpdateSalesTaxStatus(ctx.Request.Context(), middleware.Tenant(ctx).ID, ctx.Param("id"), req.Status); err != nil {
		c.respondError(ctx, "Failed to update sales tax program", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Sales tax program updated"})
}
