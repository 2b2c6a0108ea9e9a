// Package portalauth manages the client side of a placement-portal session:
// how a visitor becomes an authenticated principal, how that session is
// persisted and kept fresh, how outbound requests are authenticated, and how
// application routes are gated by role and account status.
//
// Session lifecycle:
//   - SessionManager owns the authoritative in-memory session and exposes the
//     state-machine operations (Initialize, Login, Signup, Logout, Refresh,
//     ForgotPassword, ResetPassword). Every mutation is written through to a
//     Store so the session survives process restarts.
//   - Refresh attempts are coalesced: concurrent callers share a single
//     in-flight network call and observe its result.
//
// Request authentication:
//   - Transport wraps an http.RoundTripper, attaches the persisted bearer
//     token to every request, refreshes proactively inside the expiry window,
//     and performs exactly one refresh-and-retry when a request comes back
//     unauthorized.
//
// Guards:
//   - Guard evaluation is pure: decisions are computed from a Snapshot and
//     never enforce anything by themselves. Server-side authorization remains
//     the security boundary; guards only route and render. Adapters for
//     go-router and Fiber live under middleware/ and adapters/.
package portalauth
