package main

import (
	"context"

	"stationops/internal/config"
	"stationops/internal/database"
	"stationops/internal/handler"
	"stationops/internal/middleware"
	"stationops/internal/repository"
	"stationops/internal/service"
	"stationops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           StationOps API
// @version         1.0
// @description     Back office for gas station operations: users with page-level permissions, tanks, deliveries, daily sales and email automation.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	logrus.Info("connected to PostgreSQL")

	middleware.Init(db, []byte(cfg.JWTSecret))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	stationRepo := repository.NewStationRepository(db)
	tankRepo := repository.NewTankRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	emailRepo := repository.NewEmailLogRepository(db)

	validationCfg := service.DefaultValidationConfig()
	validationCfg.ProtectedAdminEmail = cfg.ProtectedAdminEmail
	validationCfg.MaxAdminsPerStation = cfg.MaxAdminsPerStation
	validator := service.NewUserValidator(userRepo, validationCfg)

	userService := service.NewUserService(userRepo, tokenRepo, auditRepo, txManager, validator, []byte(cfg.JWTSecret))
	permissionService := service.NewPermissionService(userRepo, auditRepo, txManager)
	emailService := service.NewEmailService(emailRepo)
	stationService := service.NewStationService(stationRepo, auditRepo, txManager)
	tankService := service.NewTankService(tankRepo, stationRepo, auditRepo, txManager, emailService, wsHub, cfg.AlertRecipient, cfg.LowTankPercent)
	deliveryService := service.NewDeliveryService(deliveryRepo, tankRepo, stationRepo, auditRepo, txManager, emailService, wsHub, cfg.AlertRecipient)
	salesService := service.NewSalesService(salesRepo, stationRepo, auditRepo, txManager, wsHub)
	auditService := service.NewAuditService(auditRepo)

	// Seed the protected Administrator account on first boot.
	if err := userService.EnsureAdmin(context.Background(), cfg.AdminSeedEmail, cfg.AdminSeedPassword); err != nil {
		logrus.WithError(err).Warn("failed to seed admin account")
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	stationHandler := handler.NewStationHandler(stationService)
	tankHandler := handler.NewTankHandler(tankService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	salesHandler := handler.NewSalesHandler(salesService)
	emailHandler := handler.NewEmailHandler(emailService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.JWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	permissionHandler.RegisterRoutes(router.Group(""))
	stationHandler.RegisterRoutes(router.Group(""))
	tankHandler.RegisterRoutes(router.Group(""))
	deliveryHandler.RegisterRoutes(router.Group(""))
	salesHandler.RegisterRoutes(router.Group(""))
	emailHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	logrus.Infof("server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}
