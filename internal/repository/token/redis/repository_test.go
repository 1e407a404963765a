package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/token"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	return NewRepo(rc, 5*time.Minute), s
}

func TestConnectTokenRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetConnectToken(ctx, "tok1", "alice"))

	username, err := repo.ConsumeConnectToken(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestConnectTokenIsSingleUse(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetConnectToken(ctx, "tok1", "alice"))

	_, err := repo.ConsumeConnectToken(ctx, "tok1")
	require.NoError(t, err)

	_, err = repo.ConsumeConnectToken(ctx, "tok1")
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestConnectTokenExpires(t *testing.T) {
	repo, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetConnectToken(ctx, "tok1", "alice"))
	s.FastForward(6 * time.Minute)

	_, err := repo.ConsumeConnectToken(ctx, "tok1")
	assert.ErrorIs(t, err, token.ErrNotFound)
}

func TestConsumeUnknownToken(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.ConsumeConnectToken(context.Background(), "missing")
	assert.ErrorIs(t, err, token.ErrNotFound)
}
