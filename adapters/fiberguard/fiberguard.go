// Package fiberguard exposes the route guards as Fiber handlers for portals
// that mount their UI on gofiber directly.
package fiberguard

import (
	"github.com/gofiber/fiber/v2"

	portalauth "github.com/placora/go-portal-auth"
)

// DefaultContextKey is the locals key under which the authenticated user is
// exposed to downstream handlers.
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
}

func (c Config) contextKey() string {
	if c.ContextKey == "" {
		return DefaultContextKey
	}
	return c.ContextKey
}

// Protected gates a route behind authentication, and optionally behind role
// and status sets.
func Protected(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
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
			return c.Next()
		case portalauth.GuardDefer:
			return c.Status(fiber.StatusServiceUnavailable).
				SendString("Session initializing")
		default:
			return c.Redirect(decision.Target, fiber.StatusSeeOther)
		}
	}
}

// RequireRoles renders fallback (or the default denial message) instead of
// continuing when the user lacks every required role.
func RequireRoles(session SessionSource, fallback fiber.Handler, roles ...portalauth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if portalauth.EvaluateRoleGuard(session.Current(), roles...) {
			return c.Next()
		}

		if fallback != nil {
			return fallback(c)
		}
		return c.Status(fiber.StatusForbidden).
			SendString(portalauth.DefaultAccessDeniedMessage)
	}
}

// GuestOnly admits unauthenticated visitors and bounces authenticated users
// to their role-mapped dashboard.
func GuestOnly(session SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := portalauth.EvaluateGuest(session.Current())

		switch decision.Action {
		case portalauth.GuardAllow:
			return c.Next()
		case portalauth.GuardDefer:
			return c.Status(fiber.StatusServiceUnavailable).
				SendString("Session initializing")
		default:
			return c.Redirect(decision.Target, fiber.StatusSeeOther)
		}
	}
}

// DashboardRedirect is a terminal handler that sends an authenticated user
// to their role dashboard, or to login otherwise.
func DashboardRedirect(session SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := portalauth.EvaluateRoleRedirect(session.Current())
		if decision.Action == portalauth.GuardDefer {
			return c.Status(fiber.StatusServiceUnavailable).
				SendString("Session initializing")
		}
		return c.Redirect(decision.Target, fiber.StatusSeeOther)
	}
}
