package portalauth_test

import (
	"testing"

	portalauth "github.com/placora/go-portal-auth"
	"github.com/stretchr/testify/assert"
)

func snapshotFor(role portalauth.Role, status portalauth.AccountStatus) portalauth.Snapshot {
	user := testUser(role)
	user.Status = status
	return portalauth.Snapshot{
		Phase:           portalauth.PhaseAuthenticated,
		User:            user,
		AccessToken:     "access-token-1",
		TokenExpiresAt:  1,
		IsAuthenticated: true,
		Initialized:     true,
	}
}

func guestSnapshot() portalauth.Snapshot {
	return portalauth.Snapshot{
		Phase:       portalauth.PhaseUnauthenticated,
		Initialized: true,
	}
}

func TestProtectedDefersBeforeInitialize(t *testing.T) {
	decision := portalauth.EvaluateProtected(portalauth.Snapshot{}, portalauth.ProtectedConfig{})
	assert.Equal(t, portalauth.GuardDefer, decision.Action,
		"an indeterminate session must neither allow nor redirect")
}

func TestProtectedRedirectsGuestToLogin(t *testing.T) {
	decision := portalauth.EvaluateProtected(guestSnapshot(), portalauth.ProtectedConfig{})
	assert.Equal(t, portalauth.GuardRedirect, decision.Action)
	assert.Equal(t, portalauth.DefaultLoginRoute, decision.Target)

	decision = portalauth.EvaluateProtected(guestSnapshot(), portalauth.ProtectedConfig{
		RedirectTo: "/signin",
	})
	assert.Equal(t, "/signin", decision.Target)
}

func TestProtectedDeniesInsufficientRole(t *testing.T) {
	snap := snapshotFor(portalauth.RoleStudent, portalauth.StatusActive)

	decision := portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{
		RequiredRoles: []portalauth.Role{portalauth.RoleAdmin},
	})
	assert.Equal(t, portalauth.GuardRedirect, decision.Action)
	assert.Equal(t, portalauth.DefaultUnauthorizedRoute, decision.Target)
}

func TestProtectedAllowsMatchingRole(t *testing.T) {
	snap := snapshotFor(portalauth.RoleMentor, portalauth.StatusActive)

	decision := portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{
		RequiredRoles: []portalauth.Role{portalauth.RoleMentor, portalauth.RoleAdmin},
	})
	assert.True(t, decision.Allowed())
}

func TestProtectedChecksStatusAfterRole(t *testing.T) {
	snap := snapshotFor(portalauth.RoleUniversity, portalauth.StatusPendingApproval)

	decision := portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{
		RequiredRoles:  []portalauth.Role{portalauth.RoleUniversity},
		RequiredStatus: []portalauth.AccountStatus{portalauth.StatusActive},
	})
	assert.Equal(t, portalauth.GuardRedirect, decision.Action)
	assert.Equal(t, portalauth.DefaultAccountPendingRoute, decision.Target)

	snap.User.Status = portalauth.StatusActive
	decision = portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{
		RequiredRoles:  []portalauth.Role{portalauth.RoleUniversity},
		RequiredStatus: []portalauth.AccountStatus{portalauth.StatusActive},
	})
	assert.True(t, decision.Allowed())
}

func TestProtectedWithoutConstraintsAllowsAnyAuthenticated(t *testing.T) {
	for _, role := range portalauth.AllRoles() {
		snap := snapshotFor(role, portalauth.StatusActive)
		decision := portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{})
		assert.True(t, decision.Allowed(), "role %s should pass an unconstrained guard", role)
	}
}

func TestGuestRedirectsAuthenticatedToDashboard(t *testing.T) {
	snap := snapshotFor(portalauth.RoleCorporate, portalauth.StatusActive)

	decision := portalauth.EvaluateGuest(snap)
	assert.Equal(t, portalauth.GuardRedirect, decision.Action)
	assert.Equal(t, "/dashboard/corporate", decision.Target)

	decision = portalauth.EvaluateGuest(guestSnapshot())
	assert.True(t, decision.Allowed())
}

func TestRoleRedirectTargets(t *testing.T) {
	cases := map[portalauth.Role]string{
		portalauth.RoleStudent:    "/dashboard/student",
		portalauth.RoleCorporate:  "/dashboard/corporate",
		portalauth.RoleUniversity: "/dashboard/university",
		portalauth.RoleMentor:     "/dashboard/mentor",
		portalauth.RoleAdmin:      "/dashboard/admin",
	}

	for role, want := range cases {
		decision := portalauth.EvaluateRoleRedirect(snapshotFor(role, portalauth.StatusActive))
		assert.Equal(t, portalauth.GuardRedirect, decision.Action)
		assert.Equal(t, want, decision.Target)
	}

	decision := portalauth.EvaluateRoleRedirect(guestSnapshot())
	assert.Equal(t, portalauth.DefaultLoginRoute, decision.Target)
}

func TestDashboardRouteFallback(t *testing.T) {
	assert.Equal(t, portalauth.DefaultDashboardRoute, portalauth.DashboardRoute("CONTRACTOR"),
		"unmapped roles land on the generic dashboard")
	assert.Equal(t, portalauth.DefaultDashboardRoute, portalauth.DashboardRoute(""))
}

func TestDashboardRoutesAreDistinct(t *testing.T) {
	seen := map[string]portalauth.Role{}
	for _, role := range portalauth.AllRoles() {
		route := portalauth.DashboardRoute(role)
		prev, dup := seen[route]
		assert.False(t, dup, "roles %s and %s share route %s", prev, role, route)
		seen[route] = role
	}
	assert.Len(t, seen, 5)
}

func TestEvaluateRoleGuard(t *testing.T) {
	snap := snapshotFor(portalauth.RoleAdmin, portalauth.StatusActive)
	assert.True(t, portalauth.EvaluateRoleGuard(snap, portalauth.RoleAdmin))
	assert.False(t, portalauth.EvaluateRoleGuard(snap, portalauth.RoleStudent))
	assert.False(t, portalauth.EvaluateRoleGuard(snap),
		"an empty allow list matches no role")
	assert.False(t, portalauth.EvaluateRoleGuard(guestSnapshot()))
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, portalauth.RoleIsAtLeast(portalauth.RoleAdmin, portalauth.RoleMentor))
	assert.True(t, portalauth.RoleIsAtLeast(portalauth.RoleMentor, portalauth.RoleStudent))
	assert.False(t, portalauth.RoleIsAtLeast(portalauth.RoleStudent, portalauth.RoleMentor))
	assert.True(t, portalauth.RoleIsAtLeast(portalauth.RoleCorporate, portalauth.RoleUniversity),
		"corporate and university rank equally")
}
