package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nfredmond/project-manager/middleware"
	services "github.com/nfredmond/project-manager/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	JWTSecret     string
	DigestToken   string
	CORSOrigins   []string
	Metrics       *services.Metrics
	Gatherer      prometheus.Gatherer
	GlobalLimiter *services.RateLimiter
	StrictLimiter *services.RateLimiter
	Logger        *zap.Logger
}

// NewRouter mounts every route on a fresh engine.
func NewRouter(c *AgencyController, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.GlobalLimiter == nil {
		opts.GlobalLimiter = middleware.NewGlobalRateLimiter()
	}
	if opts.StrictLimiter == nil {
		opts.StrictLimiter = middleware.NewStrictRateLimiter()
	}
	strict := middleware.Limit(opts.StrictLimiter)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger, opts.Metrics))
	router.Use(middleware.CORSMiddleware(opts.CORSOrigins))
	router.Use(middleware.Limit(opts.GlobalLimiter))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public portal and scheduled jobs.
	public := router.Group("/api/public/:slug")
	public.POST("/community", strict, c.SubmitCommunityInput)
	public.GET("/community", c.GetPublicCommunityInputs)
	router.POST("/api/action-center/digest", middleware.DigestToken(opts.DigestToken), c.SendDigest)

	// Signed in, no tenant required.
	user := router.Group("/api", middleware.Auth(opts.JWTSecret))
	user.GET("/memberships", c.GetMemberships)
	user.POST("/tenants/switch", c.SwitchTenant)
	user.GET("/profile", c.GetProfile)
	user.PATCH("/profile", c.UpdateProfile)
	user.POST("/invitations/:token/accept", c.AcceptInvitation)

	api := user.Group("", middleware.ActiveTenant(c.service))
	edit := middleware.RequirePermission(func(p services.RolePermissions) bool { return p.CanEditProjects })
	manage := middleware.RequirePermission(func(p services.RolePermissions) bool { return p.CanInviteMembers })
	review := middleware.RequirePermission(func(p services.RolePermissions) bool { return p.CanReviewCommunity })

	api.GET("/tenant", c.GetCurrentTenant)
	api.PUT("/tenant/settings", manage, c.UpdateTenantSettings)
	api.POST("/invitations", manage, c.CreateInvitation)

	api.GET("/action-center", c.GetActionCenter)
	api.GET("/dashboard", c.GetDashboard)

	api.GET("/projects", c.GetProjects)
	api.POST("/projects", edit, c.CreateProject)
	api.PATCH("/projects/:id/status", edit, c.UpdateProjectStatus)

	api.GET("/caltrans/phases", c.GetPhases)
	api.POST("/caltrans/phases", edit, c.CreatePhase)
	api.PATCH("/caltrans/phases/:id/status", edit, c.UpdatePhaseStatus)
	api.GET("/caltrans/invoices", c.GetInvoices)
	api.POST("/caltrans/invoices", edit, c.CreateInvoice)

	api.GET("/grants", c.GetGrants)
	api.POST("/grants", edit, c.CreateGrant)
	api.PATCH("/grants/:id/stage", edit, c.UpdateGrantStage)

	api.GET("/meetings", c.GetMeetings)
	api.POST("/meetings", edit, c.CreateMeeting)
	api.PATCH("/meetings/:id/status", edit, c.UpdateMeetingStatus)
	api.POST("/meetings/summarize", strict, c.SummarizeMeeting)

	api.GET("/records-requests", c.GetRecordsRequests)
	api.POST("/records-requests", edit, c.CreateRecordsRequest)
	api.PATCH("/records-requests/:id/status", edit, c.UpdateRecordsRequestStatus)

	api.GET("/environmental", c.GetEnvironmentalFactors)
	api.PUT("/environmental", edit, c.UpsertEnvironmentalFactor)

	api.GET("/sales-tax", c.GetSalesTaxPrograms)
	api.POST("/sales-tax", edit, c.CreateSalesTaxProgram)
	api.PATCH("/sales-tax/:id/status", edit, c.UpdateSalesTaxStatus)

	api.GET("/community", c.GetCommunityInputs)
	api.PATCH("/community/:id/status", review, c.ReviewCommunityInput)

	api.GET("/documents", c.GetDocuments)
	api.GET("/documents/search", c.SearchDocuments)
	api.POST("/documents", edit, c.CreateDocument)
	api.POST("/documents/upload", strict, edit, c.UploadDocument)
	api.POST("/uploads", strict, edit, c.UploadFile)

	api.POST("/generate/grant-narrative", strict, c.GenerateGrantNarrative)

	return router
}
