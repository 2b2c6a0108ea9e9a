package portalauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	portalauth "github.com/placora/go-portal-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresClientAndFileStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user": map[string]any{
					"id":     "u-1",
					"email":  "jordan@example.com",
					"role":   "STUDENT",
					"status": "ACTIVE",
				},
				"accessToken":  "access-token-1",
				"refreshToken": "refresh-1",
				"expiresIn":    900,
			},
		})
	}))
	defer server.Close()

	storagePath := filepath.Join(t.TempDir(), "auth-storage.json")
	manager := portalauth.New(&portalauth.Settings{
		BaseURL:     server.URL,
		StoragePath: storagePath,
	})
	manager.Initialize()

	_, err := manager.Login(context.Background(), portalauth.LoginRequest{
		Email:    "jordan@example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	// The session landed in the configured file store.
	record, ok := portalauth.NewFileStore(storagePath).Load()
	require.True(t, ok)
	assert.Equal(t, "access-token-1", record.AccessToken)
}

func TestGuardDefaults(t *testing.T) {
	pc := portalauth.GuardDefaults(&portalauth.Settings{LoginRoute: "/signin"})

	decision := portalauth.EvaluateProtected(portalauth.Snapshot{Initialized: true}, pc)
	assert.Equal(t, portalauth.GuardRedirect, decision.Action)
	assert.Equal(t, "/signin", decision.Target)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, portalauth.IsSessionExpired(portalauth.ErrSessionExpired))
	assert.False(t, portalauth.IsSessionExpired(nil))
	assert.False(t, portalauth.IsSessionExpired(goerrors.New("nope", goerrors.CategoryOperation)))

	assert.True(t, portalauth.IsUnauthorized(portalauth.ErrMissingRefreshToken))
	assert.False(t, portalauth.IsUnauthorized(goerrors.New("nope", goerrors.CategoryOperation)))
}
