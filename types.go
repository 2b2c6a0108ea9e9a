package portalauth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetStoragePath() string
	GetLoginRoute() string
	GetRefreshWindow() time.Duration
}

// Store is the durable snapshot of the session, read once at process start
// and overwritten on every mutation. Implementations never surface I/O
// errors to callers: a corrupt or missing record loads as absent, saves are
// best effort, and Clear is idempotent.
type Store interface {
	Load() (*PersistedSession, bool)
	Save(record *PersistedSession)
	Clear()
}

// IdentityAPI is the remote identity service consumed by the SessionManager.
type IdentityAPI interface {
	Signup(ctx context.Context, payload SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, payload LoginRequest) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, payload ResetPasswordRequest) error
}

// TokenRefresher is the narrow slice of IdentityAPI the transport needs to
// recover from an unauthorized response without re-entering the
// SessionManager's own state transitions.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResult, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] PORTALAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] PORTALAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
