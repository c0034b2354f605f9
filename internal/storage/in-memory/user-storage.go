package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type UserStorage struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]model.User
	emailIndex map[string]uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		users:      make(map[uuid.UUID]model.User),
		emailIndex: make(map[string]uuid.UUID),
	}
}

func (u *UserStorage) CreateUser(
	_ context.Context,
	name, email string,
	passwordHash []byte,
) (model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.emailIndex[email]; ok {
		return model.User{}, model.ErrUserAlreadyExists
	}
	user := model.User{
		UserID:       uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	u.users[user.UserID] = user
	u.emailIndex[email] = user.UserID
	return user, nil
}

func (u *UserStorage) GetUser(_ context.Context, userID uuid.UUID) (model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.users[userID]
	if !ok {
		return model.User{}, model.ErrUserDoesNotExists
	}
	return user, nil
}

func (u *UserStorage) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	userID, ok := u.emailIndex[email]
	if !ok {
		return model.User{}, model.ErrUserDoesNotExists
	}
	return u.users[userID], nil
}
