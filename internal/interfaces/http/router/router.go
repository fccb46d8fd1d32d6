package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmflow/backend/internal/infrastructure/auth"
	"github.com/dmflow/backend/internal/interfaces/http/handler"
	"github.com/dmflow/backend/internal/interfaces/http/middleware"
)

// Dependencies carries everything the router needs to wire routes
type Dependencies struct {
	Auth       *handler.AuthHandler
	Tiers      *handler.TierHandler
	Quota      *handler.QuotaHandler
	Workspaces *handler.WorkspaceHandler
	Admin      *handler.AdminHandler
	JWT        *auth.JWTService
	Logger     *zap.Logger
}

// New builds the HTTP engine with all middleware and routes registered
func New(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(deps.JWT))
	{
		authed.GET("/auth/me", deps.Auth.Me)

		quota := authed.Group("/quota")
		{
			quota.GET("/check/:resource", deps.Quota.Check)
			quota.POST("/consume", deps.Quota.Consume)
			quota.GET("/summary", deps.Quota.Summary)
			quota.GET("/features/:feature", deps.Quota.CheckFeature)
			quota.GET("/tier", deps.Quota.Tier)
		}

		workspaces := authed.Group("/workspaces")
		{
			workspaces.POST("", deps.Workspaces.Create)
			workspaces.GET("", deps.Workspaces.List)
			workspaces.GET("/:id", deps.Workspaces.Get)
			workspaces.GET("/:id/members", deps.Workspaces.ListMembers)
			workspaces.POST("/:id/members", deps.Workspaces.AddMember)
			workspaces.PATCH("/:id/members/:user_id", deps.Workspaces.UpdateMemberRole)
			workspaces.DELETE("/:id/members/:user_id", deps.Workspaces.RemoveMember)
		}
	}

	// Operator routes
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/tiers", deps.Tiers.Create)
		admin.GET("/tiers", deps.Tiers.List)
		admin.GET("/tiers/:id", deps.Tiers.Get)
		admin.PATCH("/tiers/:id", deps.Tiers.Update)
		admin.DELETE("/tiers/:id", deps.Tiers.Delete)

		admin.PUT("/users/:id/tier", deps.Admin.AssignTier)
		admin.PUT("/users/:id/overrides", deps.Admin.SetOverrides)

		admin.POST("/billing-accounts", deps.Admin.CreateBillingAccount)
		admin.POST("/billing-accounts/:id/cancel", deps.Admin.CancelSubscriptions)
		admin.GET("/billing-accounts/:id/subscriptions", deps.Admin.ListSubscriptions)
		admin.POST("/subscriptions", deps.Admin.CreateSubscription)
	}

	return engine
}
