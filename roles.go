package portalauth

// DefaultDashboardRoute is where unmapped roles land.
const DefaultDashboardRoute = "/dashboard"

// RoleDashboardRoutes maps every role to its dedicated dashboard. The map is
// total over the five roles and every target is distinct.
var RoleDashboardRoutes = map[Role]string{
	RoleStudent:    "/dashboard/student",
	RoleCorporate:  "/dashboard/corporate",
	RoleUniversity: "/dashboard/university",
	RoleMentor:     "/dashboard/mentor",
	RoleAdmin:      "/dashboard/admin",
}

// RoleLabels are the display names for each role.
var RoleLabels = map[Role]string{
	RoleStudent:    "Student",
	RoleCorporate:  "Corporate",
	RoleUniversity: "University",
	RoleMentor:     "Mentor",
	RoleAdmin:      "Admin",
}

var roleHierarchy = map[Role]int{
	RoleStudent:    1,
	RoleCorporate:  2,
	RoleUniversity: 2,
	RoleMentor:     3,
	RoleAdmin:      100,
}

// DashboardRoute resolves the dashboard path for a role, falling back to the
// generic dashboard when the role is unmapped.
func DashboardRoute(role Role) string {
	if route, ok := RoleDashboardRoutes[role]; ok {
		return route
	}
	return DefaultDashboardRoute
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleCorporate, RoleUniversity, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsValidStatus checks if the status is one of the predefined account statuses
func IsValidStatus(s AccountStatus) bool {
	switch s {
	case StatusPendingEmailVerification, StatusPendingApproval, StatusActive,
		StatusSuspended, StatusDeleted:
		return true
	default:
		return false
	}
}

// RoleIsAtLeast checks if a role meets the minimum required level
func RoleIsAtLeast(r, minRole Role) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RoleStudent,
		RoleCorporate,
		RoleUniversity,
		RoleMentor,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// ParseStatus safely parses a string into an AccountStatus
func ParseStatus(statusStr string) (AccountStatus, bool) {
	status := AccountStatus(statusStr)
	return status, IsValidStatus(status)
}
