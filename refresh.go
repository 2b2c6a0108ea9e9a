package portalauth

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// refreshKey is the single-flight key: there is only ever one logical
// refresh for a session.
const refreshKey = "refresh-token"

// RefreshCoordinator serializes refresh attempts so only one network call is
// outstanding at a time; concurrent callers await that call and observe its
// result. The refreshed access token is persisted before any caller returns,
// so a retried request is always sequenced after the write.
type RefreshCoordinator struct {
	group  singleflight.Group
	api    TokenRefresher
	store  Store
	now    func() time.Time
	logger Logger
}

func NewRefreshCoordinator(api TokenRefresher, store Store) *RefreshCoordinator {
	return &RefreshCoordinator{
		api:    api,
		store:  store,
		now:    time.Now,
		logger: defLogger{},
	}
}

func (r *RefreshCoordinator) WithLogger(logger Logger) *RefreshCoordinator {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithClock injects a custom clock (useful for tests).
func (r *RefreshCoordinator) WithClock(clock func() time.Time) *RefreshCoordinator {
	if clock != nil {
		r.now = clock
	}
	return r
}

// Refresh exchanges the stored refresh token for a new access token. The
// same refresh token is kept; the service does not rotate it.
func (r *RefreshCoordinator) Refresh(ctx context.Context) (*TokenResult, error) {
	record, ok := r.store.Load()
	if !ok || record.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	v, err, shared := r.group.Do(refreshKey, func() (any, error) {
		result, err := r.api.RefreshToken(ctx, record.RefreshToken)
		if err != nil {
			return nil, err
		}

		current, ok := r.store.Load()
		if !ok {
			current = &PersistedSession{}
		}
		current.AccessToken = result.AccessToken
		current.TokenExpiresAt = resolveExpiry(r.now(), result.AccessToken, result.ExpiresIn)
		r.store.Save(current)

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		r.logger.Debug("refresh coalesced with in-flight attempt")
	}

	return v.(*TokenResult), nil
}
