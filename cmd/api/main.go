package main

import (
	"os"

	_ "woms/api/swagger" // swagger docs
	"woms/internal/authz"
	"woms/internal/database"
	"woms/internal/document"
	"woms/internal/handler"
	"woms/internal/middleware"
	"woms/internal/repository"
	"woms/internal/service"
	"woms/internal/storage"
	"woms/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Warehouse Order Management API
// @version         1.0
// @description     Backend API for material restocking, requisition vouchers and purchase orders.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("No configs/.env file found or error loading it")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logrus.WithError(err).Fatal("Database connection failed")
	}
	logrus.Info("Connected to PostgreSQL successfully.")

	// Blob store for generated PDFs and signature images.
	mediaRoot := envOr("MEDIA_ROOT", "media")
	mediaURL := envOr("MEDIA_URL", "/media")
	store, err := storage.NewFilesystemStore(mediaRoot, mediaURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize media storage")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	draftPORepo := repository.NewDraftPORepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	policy := authz.NewRolePolicy()
	renderer := document.NewFPDFRenderer()
	signer := document.NewPDFCPUSigner()

	notifier := service.NewNotifier(notificationRepo, wsHub)
	authService := service.NewAuthService(db, userRepo, store, notifier)
	restockingService := service.NewRestockingService(db, policy, renderer, signer, store, notifier)
	roleService := service.NewRoleService(db, userRepo, policy, notifier)
	poService := service.NewPOService(db, txManager, draftPORepo, purchaseOrderRepo, userRepo, policy, renderer, store, notifier)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	restockingHandler := handler.NewRestockingHandler(restockingService)
	roleHandler := handler.NewRoleHandler(roleService)
	poHandler := handler.NewPOHandler(poService)
	notificationHandler := handler.NewNotificationHandler(notifier)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	restockingHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	poHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)

	port := envOr("PORT", "8080")
	logrus.Infof("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
