package portalauth_test

import (
	"context"
	"sync"
	"time"

	portalauth "github.com/placora/go-portal-auth"
)

// mockAPI is a hand-rolled IdentityAPI double. Function fields drive
// behavior per test; call counters make coalescing observable.
type mockAPI struct {
	mu sync.Mutex

	LoginFn   func(ctx context.Context, payload portalauth.LoginRequest) (*portalauth.AuthResult, error)
	SignupFn  func(ctx context.Context, payload portalauth.SignupRequest) (*portalauth.AuthResult, error)
	RefreshFn func(ctx context.Context, refreshToken string) (*portalauth.TokenResult, error)
	LogoutFn  func(ctx context.Context) error
	MeFn      func(ctx context.Context) (*portalauth.User, error)
	ForgotFn  func(ctx context.Context, email string) error
	ResetFn   func(ctx context.Context, payload portalauth.ResetPasswordRequest) error

	LoginCalls   int
	SignupCalls  int
	RefreshCalls int
	LogoutCalls  int
}

func (m *mockAPI) Login(ctx context.Context, payload portalauth.LoginRequest) (*portalauth.AuthResult, error) {
	m.mu.Lock()
	m.LoginCalls++
	fn := m.LoginFn
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, payload)
}

func (m *mockAPI) Signup(ctx context.Context, payload portalauth.SignupRequest) (*portalauth.AuthResult, error) {
	m.mu.Lock()
	m.SignupCalls++
	fn := m.SignupFn
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, payload)
}

func (m *mockAPI) RefreshToken(ctx context.Context, refreshToken string) (*portalauth.TokenResult, error) {
	m.mu.Lock()
	m.RefreshCalls++
	fn := m.RefreshFn
	m.mu.Unlock()

	if fn == nil {
		return &portalauth.TokenResult{AccessToken: "refreshed", ExpiresIn: 900}, nil
	}
	return fn(ctx, refreshToken)
}

func (m *mockAPI) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.LogoutCalls++
	fn := m.LogoutFn
	m.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *mockAPI) CurrentUser(ctx context.Context) (*portalauth.User, error) {
	if m.MeFn == nil {
		return nil, nil
	}
	return m.MeFn(ctx)
}

func (m *mockAPI) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotFn == nil {
		return nil
	}
	return m.ForgotFn(ctx, email)
}

func (m *mockAPI) ResetPassword(ctx context.Context, payload portalauth.ResetPasswordRequest) error {
	if m.ResetFn == nil {
		return nil
	}
	return m.ResetFn(ctx, payload)
}

func (m *mockAPI) refreshCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefreshCalls
}

func testUser(role portalauth.Role) *portalauth.User {
	return &portalauth.User{
		ID:            "5b0c7f2e-9f4b-4c2e-8a4e-2f8c6d2f9a01",
		FullName:      "Jordan Reyes",
		Email:         "jordan@example.com",
		Role:          role,
		Status:        portalauth.StatusActive,
		EmailVerified: true,
		CreatedAt:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func authResult(role portalauth.Role, refreshToken string, expiresIn int64) *portalauth.AuthResult {
	return &portalauth.AuthResult{
		User:         testUser(role),
		AccessToken:  "access-token-1",
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}
}

// fixedClock is a mutable test clock shared with WithClock.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(at time.Time) *fixedClock {
	return &fixedClock{now: at}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}
