package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts known roles case-insensitively", func(t *testing.T) {
		for _, s := range []string{"admin", "ADMIN", " Manager ", "analyst", "operator", "readonly", "guest"} {
			role, err := ParseRole(s)
			require.NoError(t, err, "input %q", s)
			require.NotZero(t, LevelOf(role))
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		for _, s := range []string{"", "root", "superuser", "admin2"} {
			_, err := ParseRole(s)
			require.ErrorIs(t, err, ErrUnknownRole, "input %q", s)
		}
	})
}

func TestHierarchyOrdering(t *testing.T) {
	require.Greater(t, LevelOf(RoleAdmin), LevelOf(RoleManager))
	require.Greater(t, LevelOf(RoleManager), LevelOf(RoleAnalyst))
	require.Greater(t, LevelOf(RoleAnalyst), LevelOf(RoleOperator))
	require.Greater(t, LevelOf(RoleOperator), LevelOf(RoleReadonly))
	require.Greater(t, LevelOf(RoleReadonly), LevelOf(RoleGuest))
	require.Zero(t, LevelOf(Role("nope")))
}

func TestHasLevel(t *testing.T) {
	require.True(t, HasLevel(RoleAdmin, RoleGuest))
	require.True(t, HasLevel(RoleManager, RoleManager))
	require.False(t, HasLevel(RoleGuest, RoleAdmin))
	require.False(t, HasLevel(RoleOperator, RoleAnalyst))

	// Unknown required role can never be satisfied.
	require.False(t, HasLevel(RoleAdmin, Role("nope")))
}

func TestHasPermissionMatchesPermissionsOf(t *testing.T) {
	for _, info := range ListRoles() {
		granted := make(map[Permission]struct{})
		for _, p := range PermissionsOf(info.Role) {
			granted[p] = struct{}{}
		}

		for _, p := range AllPermissions() {
			_, inSet := granted[p]
			if info.Role == RoleAdmin {
				require.True(t, HasPermission(info.Role, p), "admin must hold %s", p)
			} else {
				require.Equal(t, inSet, HasPermission(info.Role, p),
					"role %s permission %s", info.Role, p)
			}
		}
	}
}

func TestAdminHoldsEveryPermission(t *testing.T) {
	for _, p := range AllPermissions() {
		require.True(t, HasPermission(RoleAdmin, p), "missing %s", p)
	}
}

func TestRoleSpotChecks(t *testing.T) {
	require.True(t, HasPermission(RoleManager, PermTransactionApprove))
	require.False(t, HasPermission(RoleManager, PermAdminSystem))

	require.True(t, HasPermission(RoleAnalyst, PermClientExport))
	require.False(t, HasPermission(RoleAnalyst, PermClientCreate))

	require.True(t, HasPermission(RoleOperator, PermClientUpdate))
	require.False(t, HasPermission(RoleOperator, PermClientDelete))

	require.True(t, HasPermission(RoleReadonly, PermMonitoringRead))
	require.False(t, HasPermission(RoleReadonly, PermLogCreate))

	require.True(t, HasPermission(RoleGuest, PermClientRead))
	require.False(t, HasPermission(RoleGuest, PermClientList))
}

func TestListRoles(t *testing.T) {
	roles := ListRoles()
	require.Len(t, roles, 6)

	require.Equal(t, RoleAdmin, roles[0].Role)
	require.Equal(t, 100, roles[0].Level)
	require.Equal(t, len(AllPermissions()), roles[0].PermissionsCount)

	// Descending level order.
	for i := 1; i < len(roles); i++ {
		require.Greater(t, roles[i-1].Level, roles[i].Level)
	}
}

func TestPermissionsOfReturnsCopy(t *testing.T) {
	perms := PermissionsOf(RoleGuest)
	require.NotEmpty(t, perms)

	perms[0] = Permission("tampered:perm")
	require.NotContains(t, PermissionsOf(RoleGuest), Permission("tampered:perm"))
}
