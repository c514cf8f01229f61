package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/tasktracker/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateTask   Permission = "create_task"
	PermReadTask     Permission = "read_task"
	PermUpdateTask   Permission = "update_task"
	PermDeleteTask   Permission = "delete_task"
	PermManageUsers  Permission = "manage_users"
	PermViewAuditLog Permission = "view_audit_log"
)

// RolePermissions maps role names to their permissions. Roles themselves
// carry no hierarchy; everything an admin can do is listed explicitly.
var RolePermissions = map[string][]Permission{
	domain.DefaultRoleName: {
		PermCreateTask,
		PermReadTask,
		PermUpdateTask,
		PermDeleteTask,
	},
	domain.AdminRoleName: {
		PermCreateTask,
		PermReadTask,
		PermUpdateTask,
		PermDeleteTask,
		PermManageUsers,
		PermViewAuditLog,
	},
}

// AuthorizationService handles authorization checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks whether any of the user's roles grants the
// permission.
func (as *AuthorizationService) HasPermission(roles []domain.Role, permission Permission) bool {
	for _, role := range roles {
		for _, p := range RolePermissions[role.Name] {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// ValidatePermission validates that the user's roles grant a permission.
func (as *AuthorizationService) ValidatePermission(roles []domain.Role, permission Permission) error {
	if !as.HasPermission(roles, permission) {
		as.logger.Warn("permission denied",
			slog.Any("roles", roles),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("permission denied: cannot %s", permission)
	}
	return nil
}
