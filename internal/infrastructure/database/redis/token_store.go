package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned for unknown, expired or already used tokens
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps single-use opaque tokens that map to a user id.
// Keys look like "<purpose>:<token>".
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a token store on top of a redis client
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Issue creates a token for userID that expires after ttl
func (s *TokenStore) Issue(ctx context.Context, purpose string, userID uint, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, key(purpose, token), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", purpose, err)
	}
	return token, nil
}

// Consume returns the user id of token and deletes it atomically
func (s *TokenStore) Consume(ctx context.Context, purpose, token string) (uint, error) {
	if token == "" {
		return 0, ErrTokenNotFound
	}

	val, err := s.client.GetDel(ctx, key(purpose, token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s token: %w", purpose, err)
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s token value: %w", purpose, err)
	}
	return uint(id), nil
}

func key(purpose, token string) string {
	return purpose + ":" + token
}
