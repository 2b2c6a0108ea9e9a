package portalauth

// Guard routes used when a guard is not configured with custom targets.
const (
	DefaultLoginRoute          = "/login"
	DefaultUnauthorizedRoute   = "/unauthorized"
	DefaultAccountPendingRoute = "/account-pending"
)

// DefaultAccessDeniedMessage is rendered by role guards without a fallback.
const DefaultAccessDeniedMessage = "Access denied"

// GuardAction is what a route guard decided to do.
type GuardAction string

const (
	// GuardAllow renders the protected content.
	GuardAllow GuardAction = "allow"
	// GuardRedirect sends the visitor to Target.
	GuardRedirect GuardAction = "redirect"
	// GuardDefer means the session is still indeterminate: render a neutral
	// loading state, neither the content nor a redirect.
	GuardDefer GuardAction = "defer"
)

// GuardDecision is the outcome of evaluating a guard against a session
// snapshot. Denials are control-flow redirects, not errors.
type GuardDecision struct {
	Action GuardAction
	Target string
}

// Allowed is a convenience for decision checks in handlers.
func (d GuardDecision) Allowed() bool {
	return d.Action == GuardAllow
}

// ProtectedConfig describes an authenticated-only route: optionally a role
// set and a status set, plus redirect targets for each denial.
type ProtectedConfig struct {
	RequiredRoles  []Role
	RequiredStatus []AccountStatus
	RedirectTo     string
	UnauthorizedTo string
	PendingTo      string
}

func (c ProtectedConfig) redirectTo() string {
	if c.RedirectTo == "" {
		return DefaultLoginRoute
	}
	return c.RedirectTo
}

func (c ProtectedConfig) unauthorizedTo() string {
	if c.UnauthorizedTo == "" {
		return DefaultUnauthorizedRoute
	}
	return c.UnauthorizedTo
}

func (c ProtectedConfig) pendingTo() string {
	if c.PendingTo == "" {
		return DefaultAccountPendingRoute
	}
	return c.PendingTo
}

// EvaluateProtected gates an authenticated-only route: unauthenticated
// visitors go to login, authenticated users failing a required role set go
// to the unauthorized target, and those failing a required status set go to
// the account-pending target.
func EvaluateProtected(s Snapshot, cfg ProtectedConfig) GuardDecision {
	if !s.Initialized {
		return GuardDecision{Action: GuardDefer}
	}

	if !s.IsAuthenticated {
		return GuardDecision{Action: GuardRedirect, Target: cfg.redirectTo()}
	}

	if len(cfg.RequiredRoles) > 0 && !s.CanAccess(cfg.RequiredRoles...) {
		return GuardDecision{Action: GuardRedirect, Target: cfg.unauthorizedTo()}
	}

	if len(cfg.RequiredStatus) > 0 && !s.HasStatus(cfg.RequiredStatus...) {
		return GuardDecision{Action: GuardRedirect, Target: cfg.pendingTo()}
	}

	return GuardDecision{Action: GuardAllow}
}

// EvaluateRoleGuard decides whether role-conditional content renders. A
// false return means the caller shows its fallback (or the default denial
// message), never the children.
func EvaluateRoleGuard(s Snapshot, requiredRoles ...Role) bool {
	return s.HasRole(requiredRoles...)
}

// EvaluateGuest gates a guest-only route: an authenticated user is sent to
// their role-mapped dashboard instead of seeing the content.
func EvaluateGuest(s Snapshot) GuardDecision {
	if !s.Initialized {
		return GuardDecision{Action: GuardDefer}
	}

	if s.IsAuthenticated && s.User != nil {
		return GuardDecision{Action: GuardRedirect, Target: DashboardRoute(s.User.Role)}
	}

	return GuardDecision{Action: GuardAllow}
}

// EvaluateRoleRedirect unconditionally routes an authenticated user to their
// role dashboard, falling back to login when unauthenticated.
func EvaluateRoleRedirect(s Snapshot) GuardDecision {
	if !s.Initialized {
		return GuardDecision{Action: GuardDefer}
	}

	if !s.IsAuthenticated || s.User == nil {
		return GuardDecision{Action: GuardRedirect, Target: DefaultLoginRoute}
	}

	return GuardDecision{Action: GuardRedirect, Target: DashboardRoute(s.User.Role)}
}
