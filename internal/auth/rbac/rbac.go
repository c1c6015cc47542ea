// Package rbac defines the closed set of roles and permissions and answers
// authorization questions against a fixed, process-wide table. Everything here
// is read-only after package init and safe for unsynchronized concurrent use.
package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// Role is one of the fixed hierarchy of roles. Parse input through ParseRole;
// never cast user-supplied strings directly.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleAnalyst  Role = "analyst"
	RoleOperator Role = "operator"
	RoleReadonly Role = "readonly"
	RoleGuest    Role = "guest"
)

// Permission is a namespaced "resource:action" capability string.
type Permission string

const (
	PermClientCreate Permission = "client:create"
	PermClientRead   Permission = "client:read"
	PermClientUpdate Permission = "client:update"
	PermClientDelete Permission = "client:delete"
	PermClientList   Permission = "client:list"
	PermClientExport Permission = "client:export"

	PermTransactionCreate  Permission = "transaction:create"
	PermTransactionRead    Permission = "transaction:read"
	PermTransactionUpdate  Permission = "transaction:update"
	PermTransactionDelete  Permission = "transaction:delete"
	PermTransactionList    Permission = "transaction:list"
	PermTransactionApprove Permission = "transaction:approve"
	PermTransactionExport  Permission = "transaction:export"

	PermLogCreate Permission = "log:create"
	PermLogRead   Permission = "log:read"
	PermLogDelete Permission = "log:delete"
	PermLogList   Permission = "log:list"
	PermLogExport Permission = "log:export"

	PermMonitoringRead    Permission = "monitoring:read"
	PermMonitoringMetrics Permission = "monitoring:metrics"
	PermMonitoringAlerts  Permission = "monitoring:alerts"
	PermMonitoringConfig  Permission = "monitoring:config"

	PermIntegrationAddress       Permission = "integration:address"
	PermIntegrationBanking       Permission = "integration:banking"
	PermIntegrationNotifications Permission = "integration:notifications"

	PermAdminUsers    Permission = "admin:users"
	PermAdminRoles    Permission = "admin:roles"
	PermAdminSystem   Permission = "admin:system"
	PermAdminDatabase Permission = "admin:database"
	PermAdminBackup   Permission = "admin:backup"

	PermAuditRead   Permission = "audit:read"
	PermAuditExport Permission = "audit:export"
)

// ErrUnknownRole reports a role string outside the closed set.
var ErrUnknownRole = errors.New("rbac: unknown role")

// roleLevels is the privilege hierarchy. Higher means more privileged, and
// the top level grants every permission unconditionally.
var roleLevels = map[Role]int{
	RoleAdmin:    100,
	RoleManager:  80,
	RoleAnalyst:  60,
	RoleOperator: 40,
	RoleReadonly: 20,
	RoleGuest:    10,
}

var allPermissions = []Permission{
	PermClientCreate, PermClientRead, PermClientUpdate, PermClientDelete,
	PermClientList, PermClientExport,
	PermTransactionCreate, PermTransactionRead, PermTransactionUpdate,
	PermTransactionDelete, PermTransactionList, PermTransactionApprove,
	PermTransactionExport,
	PermLogCreate, PermLogRead, PermLogDelete, PermLogList, PermLogExport,
	PermMonitoringRead, PermMonitoringMetrics, PermMonitoringAlerts,
	PermMonitoringConfig,
	PermIntegrationAddress, PermIntegrationBanking, PermIntegrationNotifications,
	PermAdminUsers, PermAdminRoles, PermAdminSystem, PermAdminDatabase,
	PermAdminBackup,
	PermAuditRead, PermAuditExport,
}

var rolePermissions = map[Role][]Permission{
	RoleAdmin: allPermissions,

	RoleManager: {
		PermClientCreate, PermClientRead, PermClientUpdate, PermClientDelete,
		PermClientList, PermClientExport,
		PermTransactionCreate, PermTransactionRead, PermTransactionUpdate,
		PermTransactionList, PermTransactionApprove, PermTransactionExport,
		PermLogRead, PermLogList, PermLogExport,
		PermMonitoringRead, PermMonitoringMetrics, PermMonitoringAlerts,
		PermIntegrationAddress, PermIntegrationBanking, PermIntegrationNotifications,
		PermAuditRead, PermAuditExport,
	},

	RoleAnalyst: {
		PermClientRead, PermClientList, PermClientExport,
		PermTransactionRead, PermTransactionList, PermTransactionExport,
		PermLogRead, PermLogList, PermLogExport,
		PermMonitoringRead, PermMonitoringMetrics,
		PermIntegrationAddress,
		PermAuditRead, PermAuditExport,
	},

	RoleOperator: {
		PermClientCreate, PermClientRead, PermClientUpdate, PermClientList,
		PermTransactionCreate, PermTransactionRead, PermTransactionUpdate,
		PermTransactionList,
		PermLogCreate, PermLogRead, PermLogList,
		PermIntegrationAddress,
	},

	RoleReadonly: {
		PermClientRead, PermClientList,
		PermTransactionRead, PermTransactionList,
		PermLogRead, PermLogList,
		PermMonitoringRead,
	},

	RoleGuest: {
		PermClientRead,
		PermTransactionRead,
	},
}

// permissionSets mirrors rolePermissions for O(1) membership checks.
var permissionSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

const topLevel = 100

var roleDescriptions = map[Role]string{
	RoleAdmin:    "Full system access",
	RoleManager:  "Operational management",
	RoleAnalyst:  "Analysis and reporting",
	RoleOperator: "Basic record operations",
	RoleReadonly: "Read-only access",
	RoleGuest:    "Limited access",
}

// ParseRole validates s against the closed role set. Unknown values fail
// loudly instead of defaulting.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevels[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return role, nil
}

// PermissionsOf returns a copy of the role's permission set. Unknown roles
// get nothing.
func PermissionsOf(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}

	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role grants perm. The top hierarchy level
// grants every permission unconditionally.
func HasPermission(role Role, perm Permission) bool {
	if LevelOf(role) >= topLevel {
		return true
	}

	set, ok := permissionSets[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// LevelOf returns the role's hierarchy level, or 0 for unknown roles.
func LevelOf(role Role) int {
	return roleLevels[role]
}

// HasLevel reports whether role sits at or above required in the hierarchy.
// An unknown required role is never satisfied.
func HasLevel(role, required Role) bool {
	requiredLevel, ok := roleLevels[required]
	if !ok {
		return false
	}
	return LevelOf(role) >= requiredLevel
}

// RoleInfo describes one role for introspection endpoints.
type RoleInfo struct {
	Role             Role   `json:"role"`
	Description      string `json:"description"`
	Level            int    `json:"level"`
	PermissionsCount int    `json:"permissions_count"`
}

// ListRoles returns every role ordered from most to least privileged.
func ListRoles() []RoleInfo {
	ordered := []Role{RoleAdmin, RoleManager, RoleAnalyst, RoleOperator, RoleReadonly, RoleGuest}

	out := make([]RoleInfo, 0, len(ordered))
	for _, role := range ordered {
		out = append(out, RoleInfo{
			Role:             role,
			Description:      roleDescriptions[role],
			Level:            roleLevels[role],
			PermissionsCount: len(rolePermissions[role]),
		})
	}
	return out
}

// AllPermissions returns the full permission enumeration.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Strings converts a permission slice to plain strings for embedding in
// token claims.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
