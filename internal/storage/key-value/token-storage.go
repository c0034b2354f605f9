package key_value

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
	"github.com/redis/go-redis/v9"
)

// TokenStorage keeps auth tokens in Redis so logins survive restarts and
// are shared between instances.
type TokenStorage struct {
	rdb *redis.Client
}

func NewTokenStorage(rdb *redis.Client) *TokenStorage {
	return &TokenStorage{
		rdb: rdb,
	}
}

func (t *TokenStorage) SaveToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	tokenKey := getTokenKey(token)
	if err := t.rdb.Set(ctx, tokenKey, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save token %s: %w", tokenKey, err)
	}
	return nil
}

func (t *TokenStorage) GetUserIDForToken(ctx context.Context, token string) (uuid.UUID, error) {
	tokenKey := getTokenKey(token)
	userIDStr, err := t.rdb.Get(ctx, tokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, model.ErrTokenNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get token %s: %w", tokenKey, err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse userID %s: %w", userIDStr, err)
	}
	return userID, nil
}

func (t *TokenStorage) DeleteToken(ctx context.Context, token string) error {
	tokenKey := getTokenKey(token)
	if err := t.rdb.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("failed to delete token %s: %w", tokenKey, err)
	}
	return nil
}

func getTokenKey(token string) string {
	return fmt.Sprintf("auth_token_%s", token)
}
