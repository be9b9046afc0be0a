//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"firstaccess/internal/verification/models"
	"firstaccess/pkg/testutil/containers"
)

func TestRedisStoreAgainstRealRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	st := NewRedisStore(rc.Client, "first_access")

	rec, err := models.New("12345678901", "user@example.com", "123456",
		models.TokenConfig{Length: 6, AttemptLimit: 3, ExpirationMinutes: 10}, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, st.Put(ctx, "prevcom", rec.SubjectID, rec, 10*time.Minute))

	got, err := st.Get(ctx, "prevcom", "12345678901")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, rec.Token, got.Token)

	// Redis itself owns the TTL.
	ttl, err := rc.Client.TTL(ctx, "first_access:prevcom:12345678901").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 9*time.Minute)

	entries, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, st.Delete(ctx, "prevcom", "12345678901"))
	_, err = st.Get(ctx, "prevcom", "12345678901")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreShortTTLReaps(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	st := NewRedisStore(rc.Client, "first_access")

	rec, err := models.New("98765432100", "maria@example.com", "123456",
		models.TokenConfig{Length: 6, AttemptLimit: 3, ExpirationMinutes: 10}, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, st.Put(ctx, "outrocredor", rec.SubjectID, rec, time.Second))

	require.Eventually(t, func() bool {
		_, err := st.Get(ctx, "outrocredor", "98765432100")
		return errors.Is(err, ErrNotFound)
	}, 5*time.Second, 200*time.Millisecond)
}
