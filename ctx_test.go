package portalauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	_, ok := UserFromContext(ctx)
	assert.False(t, ok)

	user := &User{ID: "u-1", Email: "jordan@example.com", Role: RoleStudent}
	ctx = WithUserContext(ctx, user)

	got, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", got.ID)
}

func TestSnapshotContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	_, ok := SnapshotFromContext(ctx)
	assert.False(t, ok)

	snap := Snapshot{Phase: PhaseAuthenticated, IsAuthenticated: true, Initialized: true}
	ctx = WithSnapshotContext(ctx, snap)

	got, ok := SnapshotFromContext(ctx)
	require.True(t, ok)
	assert.True(t, got.IsAuthenticated)
}

func TestContextKeysDoNotCollide(t *testing.T) {
	ctx := WithUserContext(context.Background(), &User{ID: "u-1"})

	_, ok := SnapshotFromContext(ctx)
	assert.False(t, ok, "user and snapshot keys are distinct")
}
