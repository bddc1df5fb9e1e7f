package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a browser session holds no access token.
var ErrTokenNotFound = errors.New("repository: session token not found")

// SessionTokenRepository maps browser session ids to access tokens.
type SessionTokenRepository interface {
	Save(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionTokenRepository struct {
	client redis.Cmdable
	prefix string
}

// NewSessionTokenRepository returns a Redis-backed implementation.
func NewSessionTokenRepository(client redis.Cmdable) SessionTokenRepository {
	return &sessionTokenRepository{client: client, prefix: "gym:session:"}
}

func (r *sessionTokenRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *sessionTokenRepository) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(sessionID), token, ttl).Err()
}

func (r *sessionTokenRepository) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	return token, err
}

func (r *sessionTokenRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
