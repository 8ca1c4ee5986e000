// @title Salesor API
// @version 1.0
// @description Backend API for the Salesor CRM
// @host localhost:5000
// @BasePath /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

package main

import (
	"log"

	"salesor-api/config"
	_ "salesor-api/docs"
	"salesor-api/internal/cache"
	"salesor-api/internal/database"
	"salesor-api/internal/handlers"
	"salesor-api/internal/middleware"
	"salesor-api/internal/repository"
	"salesor-api/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongodb.Disconnect()

	// Connect to Redis; fall back to an in-process cache when unavailable so
	// the API stays up (everything cached is reconstructible from MongoDB).
	var cacheStore cache.Store
	redisStore, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("Failed to connect to Redis (%v), using in-memory cache", err)
		cacheStore = cache.NewMemoryStore()
	} else {
		defer redisStore.Close()
		cacheStore = redisStore
		log.Println("Successfully connected to Redis!")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb)
	leadRepo := repository.NewLeadRepository(mongodb)
	customerRepo := repository.NewCustomerRepository(mongodb)

	// Initialize services
	mailSender := services.NewMailSender(cfg)
	waSender := services.NewWhatsAppSender(cfg)
	analyticsService := services.NewAnalyticsService(leadRepo, userRepo, cacheStore)
	outreachService := services.NewOutreachService(leadRepo, mailSender, waSender, cacheStore)
	chatService := services.NewChatService(leadRepo, cfg.GroqAPIKey, cfg.GroqModel)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, userRepo)
	leadHandler := handlers.NewLeadHandler(leadRepo, outreachService, cacheStore)
	publicLeadHandler := handlers.NewPublicLeadHandler(leadRepo, userRepo, cacheStore)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	chatHandler := handlers.NewChatHandler(chatService)
	billingHandler := handlers.NewBillingHandler()

	// Initialize Gin
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Salesor API is running...")
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	public := r.Group("/api")
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Salesor API is running",
			})
		})

		// Auth routes
		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Unauthenticated lead capture form
		public.POST("/leads/public/:userId", publicLeadHandler.CaptureLead)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.Auth(cfg))
	{
		// Auth protected routes
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)
		protected.PUT("/auth/updatedetails", authHandler.UpdateDetails)
		protected.PUT("/auth/updatepassword", authHandler.UpdatePassword)
		protected.PUT("/auth/target", authHandler.UpdateTarget)

		// Lead routes
		leads := protected.Group("/leads")
		{
			leads.GET("", leadHandler.GetLeads)
			leads.POST("", leadHandler.CreateLead)
			leads.POST("/bulk", leadHandler.ImportLeads)
			leads.POST("/bulk-delete", middleware.Authorize("Admin", "Manager"), leadHandler.DeleteLeadsBulk)
			leads.POST("/bulk-email", leadHandler.SendEmailBulk)
			leads.POST("/bulk-whatsapp", leadHandler.SendWhatsAppBulk)
			leads.GET("/:id", leadHandler.GetLead)
			leads.PUT("/:id", leadHandler.UpdateLead)
			leads.DELETE("/:id", middleware.Authorize("Admin", "Manager"), leadHandler.DeleteLead)
			leads.POST("/:id/email", leadHandler.SendEmail)
			leads.POST("/:id/whatsapp", leadHandler.SendWhatsApp)
		}

		// Customer routes
		customers := protected.Group("/customers")
		{
			customers.GET("", customerHandler.GetCustomers)
			customers.POST("", customerHandler.CreateCustomer)
			customers.POST("/bulk", customerHandler.ImportCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.DeleteCustomer)
		}

		// Analytics dashboard
		protected.GET("/analytics/dashboard", analyticsHandler.GetDashboard)

		// AI assistant
		protected.POST("/chat", chatHandler.HandleMessage)

		// Billing (mock)
		protected.POST("/billing/subscribe", billingHandler.Subscribe)
		protected.GET("/billing/status", billingHandler.Status)

		// Notifications (stub)
		protected.GET("/notifications", func(c *gin.Context) {
			c.JSON(200, gin.H{"notifications": []string{}})
		})
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
