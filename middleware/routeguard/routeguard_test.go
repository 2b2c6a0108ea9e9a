package routeguard_test

import (
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portalauth "github.com/placora/go-portal-auth"
	"github.com/placora/go-portal-auth/middleware/routeguard"
)

// staticSession serves a fixed snapshot, standing in for a SessionManager.
type staticSession struct {
	snap portalauth.Snapshot
}

func (s staticSession) Current() portalauth.Snapshot {
	return s.snap
}

func authenticatedSession(role portalauth.Role, status portalauth.AccountStatus) staticSession {
	user := &portalauth.User{
		ID:     "u-1",
		Email:  "jordan@example.com",
		Role:   role,
		Status: status,
	}
	return staticSession{snap: portalauth.Snapshot{
		Phase:           portalauth.PhaseAuthenticated,
		User:            user,
		AccessToken:     "access-token-1",
		TokenExpiresAt:  1,
		IsAuthenticated: true,
		Initialized:     true,
	}}
}

func guestSession() staticSession {
	return staticSession{snap: portalauth.Snapshot{
		Phase:       portalauth.PhaseUnauthenticated,
		Initialized: true,
	}}
}

func newMockContext(method string) *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("Method").Return(method).Maybe()
	return ctx
}

func TestProtectedAllowsAndExposesUser(t *testing.T) {
	session := authenticatedSession(portalauth.RoleStudent, portalauth.StatusActive)

	nextCalled := false
	handler := routeguard.Protected(routeguard.Config{Session: session})(
		func(ctx router.Context) error {
			nextCalled = true
			return nil
		})

	ctx := newMockContext("GET")
	ctx.On("Locals", routeguard.DefaultContextKey, mock.AnythingOfType("*portalauth.User")).Return(nil)

	require.NoError(t, handler(ctx))
	assert.True(t, nextCalled)
	ctx.AssertCalled(t, "Locals", routeguard.DefaultContextKey, mock.Anything)
}

func TestProtectedRedirectsGuestToLogin(t *testing.T) {
	nextCalled := false
	handler := routeguard.Protected(routeguard.Config{Session: guestSession()})(
		func(ctx router.Context) error {
			nextCalled = true
			return nil
		})

	ctx := newMockContext("GET")
	ctx.On("Redirect", portalauth.DefaultLoginRoute, []int{http.StatusFound}).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, nextCalled, "denied requests never reach the handler")
	ctx.AssertExpectations(t)
}

func TestProtectedRedirectUsesSeeOtherForMutations(t *testing.T) {
	handler := routeguard.Protected(routeguard.Config{Session: guestSession()})(
		func(ctx router.Context) error { return nil })

	ctx := newMockContext("POST")
	ctx.On("Redirect", portalauth.DefaultLoginRoute, []int{http.StatusSeeOther}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)
}

func TestProtectedDeniesRole(t *testing.T) {
	session := authenticatedSession(portalauth.RoleStudent, portalauth.StatusActive)

	handler := routeguard.Protected(routeguard.Config{
		Session:       session,
		RequiredRoles: []portalauth.Role{portalauth.RoleAdmin},
	})(func(ctx router.Context) error { return nil })

	ctx := newMockContext("GET")
	ctx.On("Redirect", portalauth.DefaultUnauthorizedRoute, []int{http.StatusFound}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)
}

func TestProtectedDeniesStatus(t *testing.T) {
	session := authenticatedSession(portalauth.RoleCorporate, portalauth.StatusPendingApproval)

	handler := routeguard.Protected(routeguard.Config{
		Session:        session,
		RequiredStatus: []portalauth.AccountStatus{portalauth.StatusActive},
		PendingTo:      "/hold-tight",
	})(func(ctx router.Context) error { return nil })

	ctx := newMockContext("GET")
	ctx.On("Redirect", "/hold-tight", []int{http.StatusFound}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)
}

func TestProtectedDefersBeforeInitialize(t *testing.T) {
	session := staticSession{snap: portalauth.Snapshot{}}

	handler := routeguard.Protected(routeguard.Config{Session: session})(
		func(ctx router.Context) error { return nil })

	ctx := newMockContext("GET")
	ctx.On("Status", http.StatusServiceUnavailable).Return(ctx)
	ctx.On("SendString", "Session initializing").Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)
}

func TestGuestOnlyBouncesAuthenticated(t *testing.T) {
	session := authenticatedSession(portalauth.RoleMentor, portalauth.StatusActive)

	nextCalled := false
	handler := routeguard.GuestOnly(session)(func(ctx router.Context) error {
		nextCalled = true
		return nil
	})

	ctx := newMockContext("GET")
	ctx.On("Redirect", "/dashboard/mentor", []int{http.StatusFound}).Return(nil)

	require.NoError(t, handler(ctx))
	assert.False(t, nextCalled)
	ctx.AssertExpectations(t)
}

func TestGuestOnlyAdmitsGuest(t *testing.T) {
	nextCalled := false
	handler := routeguard.GuestOnly(guestSession())(func(ctx router.Context) error {
		nextCalled = true
		return nil
	})

	require.NoError(t, handler(newMockContext("GET")))
	assert.True(t, nextCalled)
}

func TestDashboardRedirect(t *testing.T) {
	handler := routeguard.DashboardRedirect(
		authenticatedSession(portalauth.RoleUniversity, portalauth.StatusActive))

	ctx := newMockContext("GET")
	ctx.On("Redirect", "/dashboard/university", []int{http.StatusFound}).Return(nil)

	require.NoError(t, handler(ctx))
	ctx.AssertExpectations(t)

	guestCtx := newMockContext("GET")
	guestCtx.On("Redirect", portalauth.DefaultLoginRoute, []int{http.StatusFound}).Return(nil)

	require.NoError(t, routeguard.DashboardRedirect(guestSession())(guestCtx))
	guestCtx.AssertExpectations(t)
}
