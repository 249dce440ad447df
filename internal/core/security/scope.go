// Package security provides authorization and access control.
package security

import (
	"context"
	"fmt"

	"vetdesk/internal/core/apperror"
	appctx "vetdesk/internal/core/context"
)

// Permission defines available permissions in the system.
type Permission string

const (
	// CRUD permissions
	PermissionRead   Permission = "read"
	PermissionCreate Permission = "create"
	PermissionUpdate Permission = "update"
	PermissionDelete Permission = "delete"

	// Billing-specific permissions
	PermissionSync Permission = "sync"
	PermissionPay  Permission = "pay"

	// Admin permissions
	PermissionAdmin Permission = "admin"
	PermissionAudit Permission = "audit"
)

// Role defines a set of permissions.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleVeterinarian Role = "veterinarian"
	RoleAssistant    Role = "assistant"
	RoleReceptionist Role = "receptionist"
	RoleViewer       Role = "viewer"
)

// rolePermissions maps roles to per-entity permissions.
// Entity "*" applies to all entities.
var rolePermissions = map[Role]map[string][]Permission{
	RoleAdmin: {
		"*": {PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete, PermissionSync, PermissionPay, PermissionAudit},
	},
	RoleVeterinarian: {
		"*":          {PermissionRead},
		"appointment": {PermissionCreate, PermissionUpdate},
		"attendance":  {PermissionCreate, PermissionUpdate},
	},
	RoleAssistant: {
		"*":          {PermissionRead},
		"attendance": {PermissionUpdate},
	},
	RoleReceptionist: {
		"*":           {PermissionRead},
		"appointment": {PermissionCreate, PermissionUpdate, PermissionDelete},
		"tutor":       {PermissionCreate, PermissionUpdate},
		"animal":      {PermissionCreate, PermissionUpdate},
		"invoice":     {PermissionSync, PermissionPay, PermissionUpdate},
	},
	RoleViewer: {
		"*": {PermissionRead},
	},
}

// ExpandRoles returns the flat permission list for a set of roles,
// in "entity:permission" form. Stored in the JWT so authorization
// checks do not hit the database.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, r := range roles {
		perms, ok := rolePermissions[Role(r)]
		if !ok {
			continue
		}
		for entity, list := range perms {
			for _, p := range list {
				key := entity + ":" + string(p)
				if !seen[key] {
					seen[key] = true
					result = append(result, key)
				}
			}
		}
	}
	return result
}

// AccessScope defines the boundaries of data visibility for current request.
// Used for authorization decisions and for consistent logging/audit context.
type AccessScope struct {
	// UserID is the authenticated user
	UserID string

	// IsAdmin bypasses permission checks
	IsAdmin bool

	// Permissions in "entity:permission" form (from JWT)
	Permissions []string
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	return &AccessScope{
		UserID:      user.UserID,
		IsAdmin:     user.IsAdmin,
		Permissions: user.Permissions,
	}
}

// HasPermission checks if user has permission on entity.
func (s *AccessScope) HasPermission(entity string, perm Permission) bool {
	if s.IsAdmin {
		return true
	}
	exact := entity + ":" + string(perm)
	wildcard := "*:" + string(perm)
	for _, p := range s.Permissions {
		if p == exact || p == wildcard {
			return true
		}
	}
	return false
}

// RequirePermission returns error if permission is missing.
func (s *AccessScope) RequirePermission(entity string, perm Permission) error {
	if !s.HasPermission(entity, perm) {
		return apperror.NewForbidden(
			fmt.Sprintf("permission %s on %s required", perm, entity),
		).WithDetail("entity", entity).WithDetail("permission", perm)
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
