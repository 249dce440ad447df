package middleware

import (
	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/apperror"
	appctx "vetdesk/internal/core/context"
	"vetdesk/internal/core/security"
)

// RequirePermission middleware checks an entity-level permission from
// the JWT-expanded claims. Admins automatically pass.
func RequirePermission(entity string, perm security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		scope := security.GetScope(c.Request.Context())
		if err := scope.RequirePermission(entity, perm); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission passes if the user holds any of the listed
// entity/permission pairs. Pairs are given as "entity:permission".
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.IsAdmin {
			c.Next()
			return
		}

		for _, required := range permissions {
			if appctx.HasPermission(c.Request.Context(), required) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permissions", permissions),
		)
		c.Abort()
	}
}
