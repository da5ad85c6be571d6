package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions, grouped by surface.
const (
	PermissionAdminRead  = "admin:read"
	PermissionAdminWrite = "admin:write"

	PermissionBillingRead  = "billing:read"
	PermissionPaymentWrite = "payment:write"

	PermissionEnrollmentRead    = "enrollment:read"
	PermissionEnrollmentWrite   = "enrollment:write"
	PermissionEnrollmentApprove = "enrollment:approve"

	PermissionCourseWrite    = "course:write"
	PermissionTariffWrite    = "tariff:write"
	PermissionAttendanceMark = "attendance:mark"

	PermissionUserRead       = "user:read"
	PermissionUserWrite      = "user:write"
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission.
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role.
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionAdminRead,
			PermissionAdminWrite,
			PermissionBillingRead,
			PermissionPaymentWrite,
			PermissionEnrollmentRead,
			PermissionEnrollmentWrite,
			PermissionEnrollmentApprove,
			PermissionCourseWrite,
			PermissionTariffWrite,
			PermissionAttendanceMark,
			PermissionUserRead,
			PermissionUserWrite,
			PermissionChangePassword,
		}
	case RoleInstructor:
		return []string{
			PermissionEnrollmentRead,
			PermissionAttendanceMark,
			PermissionUserRead,
			PermissionChangePassword,
		}
	case RoleStudent:
		return []string{
			PermissionBillingRead,
			PermissionPaymentWrite,
			PermissionEnrollmentRead,
			PermissionEnrollmentWrite,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
