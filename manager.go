package portalauth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SessionManager owns the authoritative in-memory session and is the sole
// writer of the persisted record. Construct one explicitly and hand it to
// whatever issues outbound calls and whatever renders guarded regions; there
// is no package-level singleton.
type SessionManager struct {
	mu        sync.Mutex
	api       IdentityAPI
	store     Store
	refresher *RefreshCoordinator
	logger    Logger
	activity  ActivitySink
	now       func() time.Time
	window    time.Duration

	phase          SessionPhase
	user           *User
	accessToken    string
	refreshToken   string
	tokenExpiresAt int64
	errMsg         string
	loading        bool
	initialized    bool
}

// ManagerOption customizes SessionManager construction.
type ManagerOption func(*SessionManager)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithRefreshWindow overrides how far ahead of expiry ShouldRefreshToken
// reports true.
func WithRefreshWindow(window time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if window > 0 {
			m.window = window
		}
	}
}

// WithActivitySink sets the ActivitySink used to publish session events.
func WithActivitySink(sink ActivitySink) ManagerOption {
	return func(m *SessionManager) {
		m.activity = normalizeActivitySink(sink)
	}
}

// WithRefreshCoordinator shares a coordinator with a Transport so manager
// and transport refreshes coalesce into the same in-flight call.
func WithRefreshCoordinator(rc *RefreshCoordinator) ManagerOption {
	return func(m *SessionManager) {
		if rc != nil {
			m.refresher = rc
		}
	}
}

// NewSessionManager returns a manager in the Uninitialized phase. Call
// Initialize once at process start before reading the session.
func NewSessionManager(api IdentityAPI, store Store, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		api:      api,
		store:    store,
		logger:   defLogger{},
		activity: noopActivitySink{},
		now:      time.Now,
		window:   defaultRefreshWindow,
		phase:    PhaseUninitialized,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.refresher == nil {
		m.refresher = NewRefreshCoordinator(api, store).WithClock(m.now)
	}

	return m
}

// RefreshCoordinator exposes the coordinator so a Transport can share it.
func (m *SessionManager) RefreshCoordinator() *RefreshCoordinator {
	return m.refresher
}

// Initialize hydrates the session from the persisted record. A record whose
// token already elapsed is discarded and the store cleared, never trusted.
// Runs once; later calls are no-ops.
func (m *SessionManager) Initialize() {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseInitializing
	m.loading = true
	m.mu.Unlock()

	record, ok := m.store.Load()

	m.mu.Lock()
	defer func() {
		m.loading = false
		m.initialized = true
		m.mu.Unlock()
	}()

	if !ok || record.User == nil || record.AccessToken == "" {
		m.phase = PhaseUnauthenticated
		return
	}

	// Absent expiry counts as expired: an access token we cannot date is a
	// token we cannot trust.
	if record.TokenExpiresAt == 0 || m.now().UnixMilli() >= record.TokenExpiresAt {
		userID := record.User.ID
		m.clearAuthLocked()
		m.store.Clear()
		m.emit(context.Background(), ActivityEventSessionExpired, userID, nil)
		return
	}

	m.user = record.User
	m.accessToken = record.AccessToken
	m.refreshToken = record.RefreshToken
	m.tokenExpiresAt = record.TokenExpiresAt
	m.phase = PhaseAuthenticated
}

// Initialized reports whether Initialize has completed. Until then the
// session is indeterminate and consumers should render a neutral state.
func (m *SessionManager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Login authenticates against the identity service. On success the session
// becomes authenticated and is persisted; the user is returned so callers
// can route to the role-specific dashboard. On failure the service message
// is stored, the failure re-raised, and the authentication state untouched.
func (m *SessionManager) Login(ctx context.Context, payload LoginRequest) (*User, error) {
	m.beginOperation()
	defer m.endOperation()

	result, err := m.api.Login(ctx, payload)
	if err != nil {
		if isValidationError(err) {
			return nil, err
		}
		m.setError(serviceMessage(err, fallbackLogin))
		m.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": payload.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	user, err := m.applyAuthResult(result, fallbackLogin)
	if err != nil {
		m.emit(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": payload.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	m.emit(ctx, ActivityEventLoginSuccess, user.ID, map[string]any{
		"role": user.Role,
	})

	return user, nil
}

// Signup registers a new account. The contract is identical to Login; the
// account's initial status (pending verification or pending approval) is
// decided server-side.
func (m *SessionManager) Signup(ctx context.Context, payload SignupRequest) (*User, error) {
	m.beginOperation()
	defer m.endOperation()

	result, err := m.api.Signup(ctx, payload)
	if err != nil {
		if isValidationError(err) {
			return nil, err
		}
		m.setError(serviceMessage(err, fallbackSignup))
		m.emit(ctx, ActivityEventSignupFailure, "", map[string]any{
			"email": payload.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	user, err := m.applyAuthResult(result, fallbackSignup)
	if err != nil {
		m.emit(ctx, ActivityEventSignupFailure, "", map[string]any{
			"email": payload.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	m.emit(ctx, ActivityEventSignupSuccess, user.ID, map[string]any{
		"role":   user.Role,
		"status": user.Status,
	})

	return user, nil
}

// Logout attempts a best-effort remote invalidation, then unconditionally
// clears the in-memory session and the persisted record. The remote call may
// fail; the local clear never does.
func (m *SessionManager) Logout(ctx context.Context) {
	m.setLoading(true)

	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("logout remote invalidation failed: %v", err)
	}

	m.mu.Lock()
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	m.clearAuthLocked()
	m.errMsg = ""
	m.loading = false
	m.mu.Unlock()

	m.store.Clear()
	m.emit(ctx, ActivityEventLogout, userID, nil)
}

// Refresh exchanges the refresh token for a new access token, keeping the
// same refresh token. Concurrent calls coalesce into one network attempt.
// On failure the session is fully logged out rather than left half-valid;
// the error stays visible on the session.
func (m *SessionManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.refreshToken == "" {
		m.errMsg = serviceMessage(ErrMissingRefreshToken, fallbackRefresh)
		m.clearAuthLocked()
		m.mu.Unlock()
		m.store.Clear()
		return ErrMissingRefreshToken
	}
	m.phase = PhaseRefreshing
	m.mu.Unlock()

	result, err := m.refresher.Refresh(ctx)
	if err != nil {
		m.mu.Lock()
		userID := ""
		if m.user != nil {
			userID = m.user.ID
		}
		m.errMsg = serviceMessage(err, fallbackRefresh)
		m.clearAuthLocked()
		m.mu.Unlock()

		m.store.Clear()
		m.emit(ctx, ActivityEventRefreshFailure, userID, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	m.mu.Lock()
	m.accessToken = result.AccessToken
	m.tokenExpiresAt = resolveExpiry(m.now(), result.AccessToken, result.ExpiresIn)
	m.phase = PhaseAuthenticated
	m.errMsg = ""
	m.persistLocked()
	m.mu.Unlock()

	return nil
}

// ForgotPassword asks the service to start a password reset. Stateless: the
// session's authentication fields are never touched.
func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	m.beginOperation()
	defer m.endOperation()

	if err := m.api.ForgotPassword(ctx, email); err != nil {
		if isValidationError(err) {
			return err
		}
		m.setError(serviceMessage(err, fallbackForgotPassword))
		return err
	}

	m.emit(ctx, ActivityEventPasswordResetRequested, "", map[string]any{
		"email": email,
	})
	return nil
}

// ResetPassword finalizes a password reset with the emailed token.
func (m *SessionManager) ResetPassword(ctx context.Context, payload ResetPasswordRequest) error {
	m.beginOperation()
	defer m.endOperation()

	if err := m.api.ResetPassword(ctx, payload); err != nil {
		if isValidationError(err) {
			return err
		}
		m.setError(serviceMessage(err, fallbackResetPassword))
		return err
	}

	m.emit(ctx, ActivityEventPasswordResetCompleted, "", nil)
	return nil
}

// CurrentUser re-fetches the principal from the identity service and
// replaces the in-memory user wholesale.
func (m *SessionManager) CurrentUser(ctx context.Context) (*User, error) {
	m.beginOperation()
	defer m.endOperation()

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.setError(serviceMessage(err, fallbackCurrentUser))
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.persistLocked()
	m.mu.Unlock()

	return user, nil
}

// Current returns an immutable snapshot of the session.
func (m *SessionManager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsAuthenticated is true exactly when a user is present.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// IsTokenExpired reports whether the access token elapsed. An absent expiry
// counts as expired.
func (m *SessionManager) IsTokenExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tokenExpiresAt == 0 {
		return true
	}
	return m.now().UnixMilli() >= m.tokenExpiresAt
}

// ShouldRefreshToken is true once now reaches the proactive refresh window
// ahead of expiry.
func (m *SessionManager) ShouldRefreshToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tokenExpiresAt == 0 {
		return true
	}
	return m.now().UnixMilli() >= m.tokenExpiresAt-m.window.Milliseconds()
}

// HasRole checks if the current user holds any of the given roles.
func (m *SessionManager) HasRole(roles ...Role) bool {
	return m.Current().HasRole(roles...)
}

// HasStatus checks if the current account is in any of the given statuses.
func (m *SessionManager) HasStatus(statuses ...AccountStatus) bool {
	return m.Current().HasStatus(statuses...)
}

// CanAccess reports whether the current user may enter a region requiring
// one of the given roles.
func (m *SessionManager) CanAccess(roles ...Role) bool {
	return m.HasRole(roles...)
}

// ClearError drops the ambient error message.
func (m *SessionManager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

func (m *SessionManager) snapshotLocked() Snapshot {
	var user *User
	if m.user != nil {
		u := *m.user
		user = &u
	}

	return Snapshot{
		Phase:           m.phase,
		User:            user,
		AccessToken:     m.accessToken,
		RefreshToken:    m.refreshToken,
		TokenExpiresAt:  m.tokenExpiresAt,
		IsAuthenticated: m.user != nil,
		IsLoading:       m.loading,
		Initialized:     m.initialized,
		Error:           m.errMsg,
	}
}

// applyAuthResult installs the service's auth payload and persists it. A
// payload missing its user, its access token, or any way to date that token
// is rejected whole: an undatable token would be discarded at the next
// Initialize anyway.
func (m *SessionManager) applyAuthResult(result *AuthResult, fallback string) (*User, error) {
	incomplete := func() (*User, error) {
		err := goerrors.New(fallback, goerrors.CategoryAuth).
			WithTextCode("INCOMPLETE_AUTH_PAYLOAD")
		m.setError(fallback)
		return nil, err
	}

	if result == nil || result.User == nil || result.AccessToken == "" {
		return incomplete()
	}

	expiresAt := resolveExpiry(m.now(), result.AccessToken, result.ExpiresIn)
	if expiresAt == 0 {
		return incomplete()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = result.User
	m.accessToken = result.AccessToken
	m.refreshToken = result.RefreshToken
	m.tokenExpiresAt = expiresAt
	m.phase = PhaseAuthenticated
	m.errMsg = ""
	m.persistLocked()

	return result.User, nil
}

// persistLocked writes the current session through to the store. Caller
// holds the lock.
func (m *SessionManager) persistLocked() {
	m.store.Save(&PersistedSession{
		SchemaVersion:   storageSchemaVersion,
		User:            m.user,
		AccessToken:     m.accessToken,
		RefreshToken:    m.refreshToken,
		TokenExpiresAt:  m.tokenExpiresAt,
		IsAuthenticated: m.user != nil,
	})
}

// clearAuthLocked resets to the logged-out baseline. The ambient error is
// left alone so a forced logout can stay explained; Logout clears it
// explicitly. Caller holds the lock.
func (m *SessionManager) clearAuthLocked() {
	m.user = nil
	m.accessToken = ""
	m.refreshToken = ""
	m.tokenExpiresAt = 0
	m.phase = PhaseUnauthenticated
}

func (m *SessionManager) beginOperation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = true
	m.errMsg = ""
}

func (m *SessionManager) endOperation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
}

func (m *SessionManager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *SessionManager) setError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = message
}

func (m *SessionManager) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(m.activity)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}
