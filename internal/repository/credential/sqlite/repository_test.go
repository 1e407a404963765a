package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/credential"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	repo, err := NewRepo(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.CreateUser(ctx, &credential.CreateUserParams{
		Username:     "alice",
		PasswordHash: "hash",
		IsAdmin:      true,
	})
	require.NoError(t, err)

	user, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.True(t, user.IsAdmin)
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	params := credential.CreateUserParams{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, &params))

	err := repo.CreateUser(ctx, &params)
	assert.ErrorIs(t, err, credential.ErrAlreadyExists)
}

func TestGetUserNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestCountAdmins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	count, err := repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repo.CreateUser(ctx, &credential.CreateUserParams{Username: "alice", PasswordHash: "h", IsAdmin: true}))
	require.NoError(t, repo.CreateUser(ctx, &credential.CreateUserParams{Username: "bob", PasswordHash: "h"}))

	count, err = repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
