package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type tokenRecord struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// TokenStorage is a single-process token store used when no Redis endpoint
// is configured.
type TokenStorage struct {
	mu     sync.RWMutex
	tokens map[string]tokenRecord
}

func NewTokenStorage() *TokenStorage {
	return &TokenStorage{
		tokens: make(map[string]tokenRecord),
	}
}

func (t *TokenStorage) SaveToken(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tokens[token] = tokenRecord{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (t *TokenStorage) GetUserIDForToken(_ context.Context, token string) (uuid.UUID, error) {
	t.mu.RLock()
	rec, ok := t.tokens[token]
	t.mu.RUnlock()

	if !ok {
		return uuid.Nil, model.ErrTokenNotFound
	}
	if time.Now().After(rec.expiresAt) {
		t.mu.Lock()
		delete(t.tokens, token)
		t.mu.Unlock()
		return uuid.Nil, model.ErrTokenNotFound
	}
	return rec.userID, nil
}

func (t *TokenStorage) DeleteToken(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.tokens, token)
	return nil
}
