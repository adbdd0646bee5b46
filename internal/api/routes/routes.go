package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/api/handlers"
	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/config"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/models"
	"github.com/comunavision/backend/internal/services"
)

// Register performs automatic migrations and wires up the API routes.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.FieldDefinition{},
		&models.Comunero{},
		&models.AuditLog{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	router.GET("/api/v1/health", handlers.HealthHandler)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")

	authService := services.NewAuthService(db, cfg)
	authHandler := handlers.NewAuthHandler(authService)
	authMiddleware := middleware.AuthMiddleware(authService)

	coordinator := audit.NewCoordinator(db)
	notificationService := services.NewNotificationService(db, cfg.NotifyURLs)

	comuneroService := services.NewComuneroService(db, coordinator, notificationService)
	fieldService := services.NewFieldService(db, coordinator)
	userService := services.NewUserService(db, coordinator)
	auditService := audit.NewService(db)
	statsService := services.NewStatsService(db)
	exportService := services.NewExportService(db)

	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/auth/me", authHandler.Me)

		handlers.NewComuneroHandler(comuneroService).RegisterRoutes(protected)
		handlers.NewFieldHandler(fieldService).RegisterRoutes(protected)
		handlers.NewUserHandler(userService).RegisterRoutes(protected)
		handlers.NewLogsHandler(auditService).RegisterRoutes(protected)
		handlers.NewStatsHandler(statsService, fieldService).RegisterRoutes(protected)
		handlers.NewExportHandler(exportService).RegisterRoutes(protected)
		handlers.NewNotificationHandler(notificationService).RegisterRoutes(protected)
	}

	return nil
}
