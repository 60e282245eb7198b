package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic-engage/internal/api"
	"clinic-engage/internal/auth"
	"clinic-engage/internal/cache"
	"clinic-engage/internal/config"
	"clinic-engage/internal/database"
	"clinic-engage/internal/flow"
	"clinic-engage/internal/payment"
	"clinic-engage/internal/shopify"
	"clinic-engage/internal/validate"
	"clinic-engage/internal/webhook"
	"clinic-engage/internal/whatsapp"
	"clinic-engage/internal/ws"
	"clinic-engage/internal/zenoti"
	"clinic-engage/internal/zoho"
)

func main() {
	cfg := config.LoadConfig()

	database.RunMigrations(cfg, "migrations")
	database.InitGorm(cfg)
	db := database.GormDB

	cache.InitRedis(cfg)

	hub := ws.NewHub()
	go hub.Run()

	waClient := whatsapp.NewClient(cfg, db)
	zohoClient := zoho.NewClient(cfg)
	validator := validate.NewValidator(cfg)
	flowStore := flow.NewStore()
	flowCtrl := flow.NewController(waClient, zohoClient, validator, flowStore, db)

	razorpayClient := payment.NewClient(cfg)
	shopifyClient := shopify.NewClient(cfg)
	zenotiClient := zenoti.NewClient(cfg)

	webhookHandler := webhook.NewHandler(cfg, db, hub, flowCtrl)
	authHandler := auth.NewHandler(cfg, db)
	customerHandler := api.NewCustomerHandler(db, waClient, hub)
	leadHandler := api.NewLeadHandler(db, zohoClient)
	dashboardHandler := api.NewDashboardHandler(db)
	quickReplyHandler := api.NewQuickReplyHandler(db)
	numberHandler := api.NewNumberHandler(db)
	referrerHandler := api.NewReferrerHandler(db)
	campaignHandler := api.NewCampaignHandler(db, waClient)
	catalogHandler := api.NewCatalogHandler(db, shopifyClient)
	zenotiHandler := api.NewZenotiHandler(zenotiClient)
	paymentHandler := payment.NewHandler(cfg, razorpayClient)

	router := gin.Default()

	// CORS for the dashboard frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Meta webhook
	router.GET("/webhook", webhookHandler.VerifyWebhook)
	router.POST("/webhook", webhookHandler.HandleWebhook)

	// Razorpay webhook (signed, not JWT-protected)
	router.POST("/payments/webhook", paymentHandler.Webhook)

	// Website click tracking (public)
	router.POST("/track", referrerHandler.Track)

	// Dashboard auth
	router.POST("/auth/login", authHandler.Login)

	// Dashboard websocket
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(auth.Middleware(cfg.JWTSecret))
	{
		apiGroup.GET("/me", authHandler.Me)
		apiGroup.GET("/dashboard/stats", dashboardHandler.Stats)

		apiGroup.GET("/customers", customerHandler.ListCustomers)
		apiGroup.GET("/customers/:id", customerHandler.GetCustomer)
		apiGroup.PATCH("/customers/:id/status", customerHandler.UpdateCustomerStatus)
		apiGroup.GET("/customers/:id/messages", customerHandler.ListMessages)
		apiGroup.POST("/customers/:id/messages", customerHandler.SendMessage)

		apiGroup.GET("/leads", leadHandler.ListLeads)
		apiGroup.GET("/leads/zoho", leadHandler.ZohoLeads)
		apiGroup.GET("/leads/stats", leadHandler.LeadStats)
		apiGroup.POST("/leads/sync", leadHandler.SyncLeads)
		apiGroup.GET("/leads/:id", leadHandler.GetLead)

		apiGroup.GET("/quick-replies", quickReplyHandler.List)
		apiGroup.POST("/quick-replies", quickReplyHandler.Create)
		apiGroup.PUT("/quick-replies/:id", quickReplyHandler.Update)
		apiGroup.DELETE("/quick-replies/:id", quickReplyHandler.Delete)

		apiGroup.GET("/numbers", numberHandler.ListNumbers)
		apiGroup.POST("/numbers", numberHandler.CreateNumber)
		apiGroup.PUT("/numbers/:id", numberHandler.UpdateNumber)
		apiGroup.POST("/numbers/token", numberHandler.RotateToken)

		apiGroup.GET("/flow-configs", numberHandler.ListFlowConfigs)
		apiGroup.POST("/flow-configs", numberHandler.CreateFlowConfig)
		apiGroup.PUT("/flow-configs/:id", numberHandler.UpdateFlowConfig)
		apiGroup.DELETE("/flow-configs/:id", numberHandler.DeleteFlowConfig)

		apiGroup.GET("/referrers", referrerHandler.List)
		apiGroup.GET("/referrers/summary", referrerHandler.Summary)

		apiGroup.GET("/campaigns", campaignHandler.List)
		apiGroup.POST("/campaigns", campaignHandler.Create)
		apiGroup.POST("/campaigns/:id/send", campaignHandler.Send)

		apiGroup.GET("/categories", catalogHandler.ListCategories)
		apiGroup.POST("/categories", catalogHandler.CreateCategory)
		apiGroup.GET("/products", catalogHandler.ListProducts)
		apiGroup.POST("/products", catalogHandler.CreateProduct)
		apiGroup.PATCH("/products/:id/price", catalogHandler.UpdatePrice)

		apiGroup.GET("/payments/config", paymentHandler.ConfigStatus)
		apiGroup.POST("/payments/link", paymentHandler.CreateLink)
		apiGroup.POST("/payments/:id/capture", paymentHandler.Capture)

		apiGroup.GET("/zenoti/guests", zenotiHandler.SearchGuest)
		apiGroup.GET("/zenoti/guests/address", zenotiHandler.GuestAddress)
		apiGroup.GET("/zenoti/guests/:guestId/appointments", zenotiHandler.GuestAppointments)
		apiGroup.GET("/zenoti/centers/:centerId/sales", zenotiHandler.CenterSales)
		apiGroup.GET("/zenoti/centers/:centerId/collections", zenotiHandler.CenterCollections)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
