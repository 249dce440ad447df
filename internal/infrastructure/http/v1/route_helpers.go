package v1

import (
	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/security"
	"vetdesk/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler is the route surface every catalog handler exposes.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog
// entity with per-operation permission checks.
//
// Usage:
//
//	repo := catalog_repo.NewTutorRepo(txManager)
//	service := domain.NewCatalogService(...)
//	handler := handlers.NewTutorHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/tutors"), handler, "tutor")
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, entity string) {
	group.GET("", middleware.RequirePermission(entity, security.PermissionRead), handler.List)
	group.POST("", middleware.RequirePermission(entity, security.PermissionCreate), handler.Create)
	group.GET("/:id", middleware.RequirePermission(entity, security.PermissionRead), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(entity, security.PermissionUpdate), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(entity, security.PermissionDelete), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(entity, security.PermissionDelete), handler.SetDeletionMark)
}
