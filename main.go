// main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"emberfest/database"
	"emberfest/handlers"
	"emberfest/handlers/admin"
	"emberfest/middleware"
	"emberfest/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Process-wide singletons, constructed once and injected everywhere.
	broker := services.NewBroker()
	catalog := services.NewCatalog(os.Getenv("CHARACTER_SHEET_URL"))

	// Initialize handlers
	handlers.InitTeamHandlers(broker, catalog)
	handlers.InitRealtimeHandlers(broker)
	admin.InitAdminHandlers(broker)

	// Initialize cleanup service
	services.InitCleanupService(database.GetDB(), broker)
	services.GetCleanupService().Start()
	defer services.GetCleanupService().Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// Serve static files
	app.Static("/", "./static")
	app.Static("/assets", "./static/assets")

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.GetCurrentUser)

	// Character catalog (public)
	api.Get("/characters", handlers.GetCharacters)

	// Team routes (require authentication)
	teamGroup := api.Group("/teams")
	teamGroup.Use(middleware.AuthMiddleware)
	teamGroup.Post("/", handlers.RegisterTeam)
	teamGroup.Get("/current", handlers.GetCurrentTeam)

	// Selection routes
	selectionGroup := api.Group("/selection")
	selectionGroup.Use(middleware.AuthMiddleware)
	selectionGroup.Get("/", handlers.GetSelection)
	selectionGroup.Post("/assign", handlers.AssignCharacter)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/teams", admin.GetTeams)
	adminProtected.Get("/teams/:id", admin.GetTeam)
	adminProtected.Put("/teams/:id", admin.UpdateTeam)
	adminProtected.Delete("/teams/:id", admin.DeleteTeam)

	// HTML routes
	app.Get("/login", serveFile("./static/login.html"))
	app.Get("/register", serveFile("./static/register.html"))
	app.Get("/select-characters", serveFile("./static/select-characters.html"))
	app.Get("/status", serveFile("./static/status.html"))
	app.Get("/admin/teams", serveFile("./static/admin/teams.html"))
	app.Get("/admin/login", serveFile("./static/admin/login.html"))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Start WebSocket server for change notifications (pure net/http)
	wsPort := getEnv("WS_PORT", "4000")
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", handlers.RealtimeHandler)

	wsServer := &http.Server{
		Addr:    ":" + wsPort,
		Handler: middleware.HTTPRecoverMiddleware(middleware.RateLimitMiddleware(wsMux)),
	}

	go func() {
		log.Printf("🌐 WebSocket server starting on port %s", wsPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("WebSocket server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🛡️ Admin identity configured: %v", os.Getenv("ADMIN_EMAIL") != "")
	log.Printf("📜 Character sheet feed: %v", os.Getenv("CHARACTER_SHEET_URL") != "")
	log.Printf("🌐 Change feed available at ws://localhost:%s/ws", wsPort)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("ADMIN_EMAIL") == "" {
		log.Println("WARNING: ADMIN_EMAIL not set; the admin area is unreachable")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

// Helper functions
func serveFile(filepath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendFile(filepath)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
