// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/security"
	"vetdesk/internal/domain"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/domain/auth"
	"vetdesk/internal/domain/billing"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/domain/catalogs/collaborator"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/domain/catalogs/servicedef"
	"vetdesk/internal/domain/catalogs/tutor"
	"vetdesk/internal/domain/schedule"
	"vetdesk/internal/infrastructure/http/v1/handlers"
	"vetdesk/internal/infrastructure/http/v1/middleware"
	"vetdesk/internal/infrastructure/storage/postgres"
	"vetdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"vetdesk/internal/infrastructure/storage/postgres/stock_repo"
	"vetdesk/pkg/logger"
)

// RouterConfig holds everything the router needs. Services are built
// once at startup and shared across requests.
type RouterConfig struct {
	Pool      *postgres.Pool
	Logger    *logger.Logger
	Validator middleware.JWTValidator

	AuthService *auth.Service

	TutorService        *domain.CatalogService[*tutor.Tutor]
	AnimalService       *domain.CatalogService[*animal.Animal]
	CollaboratorService *collaborator.Service
	ProductService      *domain.CatalogService[*product.Product]
	ServiceDefService   *domain.CatalogService[*servicedef.ServiceDefinition]

	// ProductRepo and StockRepo back the stock-aware product endpoints.
	ProductRepo *catalog_repo.ProductRepo
	StockRepo   *stock_repo.StockRepo

	ScheduleService   *schedule.Service
	AttendanceService *attendance.Service
	BillingService    *billing.Service

	AuditService *postgres.AuditService

	// IdempotencyStore enables X-Idempotency-Key replay on mutating
	// routes when set.
	IdempotencyStore *postgres.IdempotencyStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.Validator))
		if cfg.IdempotencyStore != nil {
			protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
		}

		registerCatalogRoutes(protected, cfg)
		registerScheduleRoutes(protected, cfg)
		registerAttendanceRoutes(protected, cfg)
		registerInvoiceRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	publicAuth := rg.Group("/auth")

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.Validator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- TUTORS ---
	{
		handler := handlers.NewTutorHandler(baseHandler, cfg.TutorService)
		RegisterCatalogRoutes(catalogs.Group("/tutors"), handler, "tutor")
	}

	// --- ANIMALS ---
	{
		handler := handlers.NewAnimalHandler(baseHandler, cfg.AnimalService)
		RegisterCatalogRoutes(catalogs.Group("/animals"), handler, "animal")
	}

	// --- COLLABORATORS ---
	{
		handler := handlers.NewCollaboratorHandler(baseHandler, cfg.CollaboratorService)
		RegisterCatalogRoutes(catalogs.Group("/collaborators"), handler, "collaborator")
	}

	// --- SERVICE DEFINITIONS ---
	{
		handler := handlers.NewServiceDefinitionHandler(baseHandler, cfg.ServiceDefService)
		RegisterCatalogRoutes(catalogs.Group("/service-definitions"), handler, "service_definition")
	}

	// --- PRODUCTS (catalog CRUD plus stock endpoints) ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService, cfg.ProductRepo, cfg.StockRepo)
		products := catalogs.Group("/products")
		products.GET("/low-stock", middleware.RequirePermission("product", security.PermissionRead), handler.LowStock)
		products.GET("/:id/movements", middleware.RequirePermission("product", security.PermissionRead), handler.Movements)
		RegisterCatalogRoutes(products, handler, "product")
	}
}

// registerScheduleRoutes registers appointment and calendar endpoints.
func registerScheduleRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewScheduleHandler(baseHandler, cfg.ScheduleService)

	group := rg.Group("/appointments")
	group.GET("", middleware.RequirePermission("appointment", security.PermissionRead), handler.List)
	group.GET("/calendar", middleware.RequirePermission("appointment", security.PermissionRead), handler.Calendar)
	group.GET("/:id", middleware.RequirePermission("appointment", security.PermissionRead), handler.Get)
	group.POST("", middleware.RequirePermission("appointment", security.PermissionCreate), handler.Create)
	group.PUT("/:id", middleware.RequirePermission("appointment", security.PermissionUpdate), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission("appointment", security.PermissionDelete), handler.Delete)
	group.POST("/:id/reschedule", middleware.RequirePermission("appointment", security.PermissionUpdate), handler.Reschedule)
	group.POST("/:id/confirm", middleware.RequirePermission("appointment", security.PermissionUpdate), handler.Confirm)
	group.POST("/:id/complete", middleware.RequirePermission("appointment", security.PermissionUpdate), handler.Complete)
}

// registerAttendanceRoutes registers visit record endpoints.
func registerAttendanceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAttendanceHandler(baseHandler, cfg.AttendanceService)

	group := rg.Group("/attendances")
	group.GET("", middleware.RequirePermission("attendance", security.PermissionRead), handler.List)
	group.GET("/:id", middleware.RequirePermission("attendance", security.PermissionRead), handler.Get)
	group.POST("", middleware.RequirePermission("attendance", security.PermissionCreate), handler.Create)
	group.PUT("/:id", middleware.RequirePermission("attendance", security.PermissionUpdate), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission("attendance", security.PermissionDelete), handler.Delete)
}

// registerInvoiceRoutes registers billing endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewInvoiceHandler(baseHandler, cfg.BillingService, cfg.AuditService)

	group := rg.Group("/invoices")
	group.GET("", middleware.RequirePermission("invoice", security.PermissionRead), handler.List)
	group.GET("/:id", middleware.RequirePermission("invoice", security.PermissionRead), handler.Get)
	group.POST("/sync", middleware.RequirePermission("invoice", security.PermissionSync), handler.Sync)
	group.POST("/:id/items", middleware.RequirePermission("invoice", security.PermissionUpdate), handler.AddItem)
	group.DELETE("/:id/items/:itemId", middleware.RequirePermission("invoice", security.PermissionUpdate), handler.RemoveItem)
	group.POST("/:id/installments/:installmentId/pay", middleware.RequirePermission("invoice", security.PermissionPay), handler.PayInstallment)
}
