package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncroom/server/internal/repository/token"
)

const connectTokenPrefix = "connect-token"

type repo struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRepo(rc *redis.Client, ttl time.Duration) *repo {
	return &repo{rc: rc, ttl: ttl}
}

func (r *repo) getConnectTokenKey(tokenId string) string {
	return connectTokenPrefix + ":" + tokenId
}

func (r *repo) SetConnectToken(ctx context.Context, tokenId, username string) error {
	if err := r.rc.Set(ctx, r.getConnectTokenKey(tokenId), username, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set connect token: %w", err)
	}

	return nil
}

// ConsumeConnectToken resolves and deletes the token in one step, so a token
// admits at most one connection.
func (r *repo) ConsumeConnectToken(ctx context.Context, tokenId string) (string, error) {
	username, err := r.rc.GetDel(ctx, r.getConnectTokenKey(tokenId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", token.ErrNotFound
		}

		return "", fmt.Errorf("failed to consume connect token: %w", err)
	}

	return username, nil
}
