package portalauth

import (
	"fmt"
)

// SessionPhase is the coarse state of the session state machine.
type SessionPhase string

const (
	PhaseUninitialized   SessionPhase = "uninitialized"
	PhaseInitializing    SessionPhase = "initializing"
	PhaseUnauthenticated SessionPhase = "unauthenticated"
	PhaseAuthenticated   SessionPhase = "authenticated"
	PhaseRefreshing      SessionPhase = "refreshing"
)

// Snapshot is an immutable view of the session. Guard evaluation and
// rendering decisions work off snapshots, never off live manager state.
//
// Until Initialized is true the session is indeterminate: consumers should
// render a neutral loading state, not "logged out".
type Snapshot struct {
	Phase           SessionPhase `json:"phase"`
	User            *User        `json:"user,omitempty"`
	AccessToken     string       `json:"accessToken,omitempty"`
	RefreshToken    string       `json:"refreshToken,omitempty"`
	TokenExpiresAt  int64        `json:"tokenExpiresAt,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
	Initialized     bool         `json:"initialized"`
	Error           string       `json:"error,omitempty"`
}

// HasRole checks if the user holds any of the given roles.
func (s Snapshot) HasRole(roles ...Role) bool {
	if s.User == nil {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

// HasStatus checks if the user's account is in any of the given statuses.
func (s Snapshot) HasStatus(statuses ...AccountStatus) bool {
	if s.User == nil {
		return false
	}
	for _, status := range statuses {
		if s.User.Status == status {
			return true
		}
	}
	return false
}

// CanAccess reports whether the user may enter a region that requires one of
// the given roles. Advisory only, enforcement happens server-side.
func (s Snapshot) CanAccess(roles ...Role) bool {
	return s.HasRole(roles...)
}

// DashboardRoute resolves the user's role-mapped dashboard, or empty when
// no user is present.
func (s Snapshot) DashboardRoute() string {
	if s.User == nil {
		return ""
	}
	return DashboardRoute(s.User.Role)
}

func (s Snapshot) String() string {
	user := "<nil>"
	if s.User != nil {
		user = fmt.Sprintf("%s (%s)", s.User.Email, s.User.Role)
	}
	return fmt.Sprintf(
		"phase=%s user=%s authenticated=%t loading=%t err=%q",
		s.Phase,
		user,
		s.IsAuthenticated,
		s.IsLoading,
		s.Error,
	)
}
