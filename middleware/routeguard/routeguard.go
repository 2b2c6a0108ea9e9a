// Package routeguard adapts the pure guard evaluators to go-router
// middleware so server-rendered portal routes can allow, deny, or redirect
// on the client session. Guards here are advisory gatekeeping, not a
// security boundary.
package routeguard

import (
	"net/http"

	"github.com/goliatone/go-router"

	portalauth "github.com/placora/go-portal-auth"
)

// DefaultContextKey is the locals key under which the authenticated user is
// exposed to downstream handlers and templates.
const DefaultContextKey = "user"

// SessionSource yields the snapshot guards evaluate against.
// *portalauth.SessionManager satisfies it.
type SessionSource interface {
	Current() portalauth.Snapshot
}

// Config describes a protected route.
type Config struct {
	Session        SessionSource
	RequiredRoles  []portalauth.Role
	RequiredStatus []portalauth.AccountStatus
	RedirectTo     string
	UnauthorizedTo string
	PendingTo      string
	ContextKey     string
	Logger         portalauth.Logger
}

func (c Config) contextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

// Protected gates a route behind authentication, and optionally behind role
// and status sets. Denials redirect; they are never errors.
func Protected(cfg Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			snap := cfg.Session.Current()

			decision := portalauth.EvaluateProtected(snap, portalauth.ProtectedConfig{
				RequiredRoles:  cfg.RequiredRoles,
				RequiredStatus: cfg.RequiredStatus,
				RedirectTo:     cfg.RedirectTo,
				UnauthorizedTo: cfg.UnauthorizedTo,
				PendingTo:      cfg.PendingTo,
			})

			switch decision.Action {
			case portalauth.GuardAllow:
				c.Locals(cfg.contextKey(), snap.User)
				return next(c)
			case portalauth.GuardDefer:
				return c.Status(http.StatusServiceUnavailable).
					SendString("Session initializing")
			default:
				return c.Redirect(decision.Target, redirectStatus(c))
			}
		}
	}
}

// GuestOnly admits unauthenticated visitors and bounces authenticated users
// to their role-mapped dashboard.
func GuestOnly(session SessionSource) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := portalauth.EvaluateGuest(session.Current())

			switch decision.Action {
			case portalauth.GuardAllow:
				return next(c)
			case portalauth.GuardDefer:
				return c.Status(http.StatusServiceUnavailable).
					SendString("Session initializing")
			default:
				return c.Redirect(decision.Target, redirectStatus(c))
			}
		}
	}
}

// DashboardRedirect is a terminal handler that sends an authenticated user
// to their role dashboard, or to login otherwise.
func DashboardRedirect(session SessionSource) router.HandlerFunc {
	return func(c router.Context) error {
		decision := portalauth.EvaluateRoleRedirect(session.Current())
		if decision.Action == portalauth.GuardDefer {
			return c.Status(http.StatusServiceUnavailable).
				SendString("Session initializing")
		}
		return c.Redirect(decision.Target, redirectStatus(c))
	}
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
