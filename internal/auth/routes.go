package auth

import "podgate/api/internal/models"

// RouteForRole maps a validated user's role to their dashboard. Unrecognized
// roles route back to login.
func RouteForRole(role models.UserRole) (string, bool) {
	switch role {
	case models.UserRoleCustomer:
		return "/customer-dashboard", true
	case models.UserRoleSiteAdmin:
		return "/site-admin-dashboard", true
	case models.UserRoleSiteSecurity:
		return "/site-security-dashboard", true
	default:
		return "/login", false
	}
}
