package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamvkosarev/docchat/internal/model"
	in_memory "github.com/iamvkosarev/docchat/internal/storage/in-memory"
)

func newTestUserUsecase() *UserUsecase {
	return NewUserUsecase(
		UserUsecaseDeps{
			UserStorage:  in_memory.NewUserStorage(),
			TokenStorage: in_memory.NewTokenStorage(),
		},
		time.Hour,
	)
}

func TestUserUsecase_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := newTestUserUsecase()

	registered, token, err := users.Register(ctx, "Ada", "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Fatal("Register() returned empty token")
	}

	fromToken, err := users.UserForToken(ctx, token)
	if err != nil {
		t.Fatalf("UserForToken() error = %v", err)
	}
	if fromToken.UserID != registered.UserID {
		t.Errorf("UserForToken().UserID = %v, want %v", fromToken.UserID, registered.UserID)
	}

	loggedIn, loginToken, err := users.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.UserID != registered.UserID {
		t.Errorf("Login().UserID = %v, want %v", loggedIn.UserID, registered.UserID)
	}
	if loginToken == token {
		t.Error("Login() reused the registration token, want a fresh one")
	}
}

func TestUserUsecase_LoginFailures(t *testing.T) {
	ctx := context.Background()
	users := newTestUserUsecase()

	if _, _, err := users.Register(ctx, "Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	if _, _, err := users.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := users.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserUsecase_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	users := newTestUserUsecase()

	if _, _, err := users.Register(ctx, "Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, _, err := users.Register(ctx, "Ada Again", "ada@example.com", "other pass"); !errors.Is(err, model.ErrUserAlreadyExists) {
		t.Errorf("Register(duplicate) error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestUserUsecase_Logout(t *testing.T) {
	ctx := context.Background()
	users := newTestUserUsecase()

	_, token, err := users.Register(ctx, "Ada", "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := users.Logout(ctx, token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := users.UserForToken(ctx, token); !errors.Is(err, model.ErrTokenNotFound) {
		t.Errorf("UserForToken() after logout error = %v, want ErrTokenNotFound", err)
	}
}
