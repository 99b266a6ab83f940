package http

import (
	"github.com/gin-gonic/gin"

	"mentora/internal/infrastructure/auth"
	"mentora/internal/interfaces/http/handlers"
	"mentora/internal/interfaces/http/middleware"
	"mentora/internal/shared/logger"
)

// Router assembles the HTTP surface of the engine
type Router struct {
	engine *gin.Engine
}

// NewRouter wires middleware, handlers and routes into a gin engine
func NewRouter(
	mode string,
	jwtService *auth.JWTService,
	assignmentHandler *handlers.AssignmentHandler,
	creditHandler *handlers.CreditHandler,
	webhookHandler *handlers.WebhookHandler,
	catalogHandler *handlers.CatalogHandler,
	adminHandler *handlers.AdminHandler,
	log logger.Interface,
) *Router {
	gin.SetMode(mode)
	handlers.RegisterValidators()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log))

	authMW := middleware.NewAuthMiddleware(jwtService, log)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	// Catalog reads are public: pricing is shown before authentication.
	v1.GET("/catalog", catalogHandler.GetCatalog)

	advisor := v1.Group("", authMW.RequireAuth())
	{
		advisor.POST("/assignments", assignmentHandler.AssignCredit)
		advisor.GET("/assignments", assignmentHandler.ListAssignments)
		advisor.GET("/assignments/:startupID", assignmentHandler.GetActiveAssignment)
		advisor.DELETE("/assignments/:startupID/auto-renewal", assignmentHandler.CancelAutoRenewal)

		advisor.GET("/credits/balance", creditHandler.GetBalance)
		advisor.GET("/credits/purchases", creditHandler.ListPurchaseHistory)

		advisor.GET("/subscriptions", catalogHandler.ListSubscriptions)
	}

	// Webhook routes authenticate the gateway integration, not an advisor.
	webhooks := v1.Group("/webhooks", authMW.RequireAuth(), authMW.RequireRole(auth.RoleGateway))
	{
		webhooks.POST("/purchases", webhookHandler.PurchaseCompleted)
		webhooks.POST("/subscriptions", webhookHandler.SubscriptionCreated)
		webhooks.POST("/subscriptions/billing-success", webhookHandler.BillingSucceeded)
		webhooks.POST("/subscriptions/billing-failure", webhookHandler.BillingFailed)
		webhooks.POST("/subscriptions/cancelled", webhookHandler.SubscriptionCancelled)
	}

	admin := v1.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/sweep", adminHandler.RunSweep)
		admin.POST("/plans", adminHandler.CreatePlan)
		admin.POST("/credits", creditHandler.AddCredits)
	}

	return &Router{engine: engine}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
