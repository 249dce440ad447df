package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "vetdesk/internal/core/context"
)

func TestExpandRoles(t *testing.T) {
	t.Run("receptionist can manage appointments", func(t *testing.T) {
		perms := ExpandRoles([]string{string(RoleReceptionist)})

		assert.Contains(t, perms, "appointment:create")
		assert.Contains(t, perms, "appointment:delete")
		assert.Contains(t, perms, "invoice:pay")
		assert.Contains(t, perms, "*:read")
		assert.NotContains(t, perms, "*:delete")
	})

	t.Run("unknown role yields nothing", func(t *testing.T) {
		perms := ExpandRoles([]string{"groomer"})
		assert.Empty(t, perms)
	})

	t.Run("duplicate permissions deduplicated", func(t *testing.T) {
		perms := ExpandRoles([]string{string(RoleViewer), string(RoleAssistant)})

		count := 0
		for _, p := range perms {
			if p == "*:read" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestAccessScope_HasPermission(t *testing.T) {
	t.Run("admin bypasses checks", func(t *testing.T) {
		scope := &AccessScope{IsAdmin: true}
		assert.True(t, scope.HasPermission("invoice", PermissionDelete))
	})

	t.Run("wildcard entity matches", func(t *testing.T) {
		scope := &AccessScope{Permissions: []string{"*:read"}}
		assert.True(t, scope.HasPermission("product", PermissionRead))
		assert.False(t, scope.HasPermission("product", PermissionUpdate))
	})

	t.Run("exact match", func(t *testing.T) {
		scope := &AccessScope{Permissions: []string{"attendance:update"}}
		assert.True(t, scope.HasPermission("attendance", PermissionUpdate))
		assert.False(t, scope.HasPermission("invoice", PermissionUpdate))
	})
}

func TestAccessScope_RequirePermission(t *testing.T) {
	scope := &AccessScope{Permissions: []string{"*:read"}}

	err := scope.RequirePermission("invoice", PermissionPay)
	require.Error(t, err)

	err = scope.RequirePermission("invoice", PermissionRead)
	require.NoError(t, err)
}

func TestGetScope(t *testing.T) {
	t.Run("from context value", func(t *testing.T) {
		scope := &AccessScope{UserID: "u1"}
		ctx := WithScope(context.Background(), scope)

		got := GetScope(ctx)
		assert.Same(t, scope, got)
	})

	t.Run("built from user context", func(t *testing.T) {
		ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
			UserID:      "u2",
			Permissions: []string{"*:read"},
		})

		got := GetScope(ctx)
		assert.Equal(t, "u2", got.UserID)
		assert.True(t, got.HasPermission("animal", PermissionRead))
	})

	t.Run("empty scope for anonymous", func(t *testing.T) {
		got := GetScope(context.Background())
		assert.False(t, got.HasPermission("animal", PermissionRead))
	})
}
