package portalauth

import (
	"context"
	"io"
	"net/http"
	"time"
)

// requestPhase tracks one outstanding request through the unauthorized
// recovery flow.
type requestPhase string

const (
	requestSent            requestPhase = "sent"
	requestAwaitingRefresh requestPhase = "awaiting_refresh"
	requestRetried         requestPhase = "retried"
	requestFailed          requestPhase = "failed"
)

// requestState is the one-shot retry marker, carried as explicit request
// metadata rather than a flag bolted onto the request object.
type requestState struct {
	phase requestPhase
}

var requestStateCtxKey = &contextKey{"request-state"}

func withRequestState(ctx context.Context, state *requestState) context.Context {
	return context.WithValue(ctx, requestStateCtxKey, state)
}

func requestStateFrom(ctx context.Context) (*requestState, bool) {
	state, ok := ctx.Value(requestStateCtxKey).(*requestState)
	return state, ok
}

var _ http.RoundTripper = &Transport{}

// Transport authenticates outbound requests. It reads the persisted record
// rather than in-memory state so independent client instances sharing a
// store observe the same credentials, attaches the bearer token, refreshes
// proactively inside the expiry window, and recovers from an unauthorized
// response with exactly one refresh-and-retry.
type Transport struct {
	base          http.RoundTripper
	store         Store
	refresher     *RefreshCoordinator
	now           func() time.Time
	window        time.Duration
	onAuthFailure func()
	logger        Logger
}

// TransportOption customizes Transport construction.
type TransportOption func(*Transport)

// WithTransportLogger overrides the default logger.
func WithTransportLogger(logger Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTransportClock injects a custom clock (useful for tests).
func WithTransportClock(clock func() time.Time) TransportOption {
	return func(t *Transport) {
		if clock != nil {
			t.now = clock
		}
	}
}

// WithTransportRefreshWindow overrides the proactive refresh window.
func WithTransportRefreshWindow(window time.Duration) TransportOption {
	return func(t *Transport) {
		if window > 0 {
			t.window = window
		}
	}
}

// WithAuthFailureHandler installs the hook invoked when the one-shot retry
// also failed, typically a redirect to the login entry point.
func WithAuthFailureHandler(handler func()) TransportOption {
	return func(t *Transport) {
		t.onAuthFailure = handler
	}
}

// NewTransport wraps base with request authentication. A nil base uses
// http.DefaultTransport.
func NewTransport(base http.RoundTripper, store Store, refresher *RefreshCoordinator, opts ...TransportOption) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	t := &Transport{
		base:      base,
		store:     store,
		refresher: refresher,
		now:       time.Now,
		window:    defaultRefreshWindow,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// Transport builds a request-authenticating Transport that shares this
// manager's store and refresh coordinator, so transport-driven refreshes
// coalesce with the manager's own.
func (m *SessionManager) Transport(base http.RoundTripper, opts ...TransportOption) *Transport {
	defaults := []TransportOption{
		WithTransportClock(m.now),
		WithTransportRefreshWindow(m.window),
		WithTransportLogger(m.logger),
	}
	return NewTransport(base, m.store, m.refresher, append(defaults, opts...)...)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	state, ok := requestStateFrom(req.Context())
	if !ok {
		state = &requestState{}
		req = req.WithContext(withRequestState(req.Context(), state))
	}

	outbound := t.authenticate(req)

	state.phase = requestSent
	resp, err := t.base.RoundTrip(outbound)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || state.phase == requestRetried {
		return resp, nil
	}

	record, ok := t.store.Load()
	if !ok || record.RefreshToken == "" {
		// Nothing to recover with: the unauthorized failure propagates
		// unchanged.
		return resp, nil
	}

	state.phase = requestAwaitingRefresh
	if _, err := t.refresher.Refresh(req.Context()); err != nil {
		state.phase = requestFailed
		t.logger.Warn("unauthorized recovery refresh failed: %v", err)
		if t.onAuthFailure != nil {
			t.onAuthFailure()
		}
		return resp, nil
	}

	retry, ok := t.rewind(req)
	if !ok {
		// Body cannot be replayed; the caller sees the original failure.
		return resp, nil
	}

	// The refreshed token is persisted before Refresh returns, so the retry
	// is sequenced strictly after the write and observes the new credential.
	drain(resp)
	state.phase = requestRetried

	return t.base.RoundTrip(t.authenticate(retry))
}

// authenticate clones the request and attaches the stored bearer token,
// refreshing proactively when the expiry window has been reached.
func (t *Transport) authenticate(req *http.Request) *http.Request {
	record, ok := t.store.Load()
	if !ok || record.AccessToken == "" {
		return req
	}

	if t.shouldRefresh(record) && record.RefreshToken != "" {
		if _, err := t.refresher.Refresh(req.Context()); err != nil {
			t.logger.Warn("proactive refresh failed: %v", err)
		} else if updated, ok := t.store.Load(); ok {
			record = updated
		}
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+record.AccessToken)
	return clone
}

func (t *Transport) shouldRefresh(record *PersistedSession) bool {
	if record.TokenExpiresAt == 0 {
		return true
	}
	return t.now().UnixMilli() >= record.TokenExpiresAt-t.window.Milliseconds()
}

// rewind prepares a replayable copy of the original request.
func (t *Transport) rewind(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
