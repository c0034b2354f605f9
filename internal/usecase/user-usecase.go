package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type UserStorage interface {
	CreateUser(ctx context.Context, name, email string, passwordHash []byte) (model.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type TokenStorage interface {
	SaveToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	GetUserIDForToken(ctx context.Context, token string) (uuid.UUID, error)
	DeleteToken(ctx context.Context, token string) error
}

type UserUsecaseDeps struct {
	UserStorage  UserStorage
	TokenStorage TokenStorage
}

type UserUsecase struct {
	UserUsecaseDeps
	tokenTTL time.Duration
}

func NewUserUsecase(deps UserUsecaseDeps, tokenTTL time.Duration) *UserUsecase {
	return &UserUsecase{
		UserUsecaseDeps: deps,
		tokenTTL:        tokenTTL,
	}
}

func (u *UserUsecase) Register(ctx context.Context, name, email, password string) (model.User, string, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := u.UserStorage.CreateUser(ctx, name, email, passwordHash)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to create user: %w", err)
	}
	token, err := u.issueToken(ctx, user.UserID)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

// Login conflates unknown email and wrong password into one error, so
// responses don't reveal which emails are registered.
func (u *UserUsecase) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := u.UserStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserDoesNotExists) {
			return model.User{}, "", model.ErrInvalidCredentials
		}
		return model.User{}, "", fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return model.User{}, "", model.ErrInvalidCredentials
	}
	token, err := u.issueToken(ctx, user.UserID)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

func (u *UserUsecase) Logout(ctx context.Context, token string) error {
	if err := u.TokenStorage.DeleteToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (u *UserUsecase) UserForToken(ctx context.Context, token string) (model.User, error) {
	userID, err := u.TokenStorage.GetUserIDForToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return model.User{}, model.ErrTokenNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user id for token: %w", err)
	}
	user, err := u.UserStorage.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (u *UserUsecase) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := u.TokenStorage.SaveToken(ctx, token, userID, u.tokenTTL); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return token, nil
}
