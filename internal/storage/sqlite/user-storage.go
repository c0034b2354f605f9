package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type UserStorage struct {
	db *sql.DB
}

func NewUserStorage(db *sql.DB) *UserStorage {
	return &UserStorage{
		db: db,
	}
}

func (u *UserStorage) CreateUser(
	ctx context.Context,
	name, email string,
	passwordHash []byte,
) (model.User, error) {
	now := time.Now().UTC()
	user := model.User{
		UserID:       uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	_, err := u.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.UserID.String(), name, email, passwordHash, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.User{}, model.ErrUserAlreadyExists
		}
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (u *UserStorage) GetUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	row := u.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`,
		userID.String(),
	)
	return scanUser(row)
}

func (u *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := u.db.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user   model.User
		userID string
	)
	err := row.Scan(&userID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrUserDoesNotExists
		}
		return model.User{}, fmt.Errorf("scan failed: %w", err)
	}
	if user.UserID, err = uuid.Parse(userID); err != nil {
		return model.User{}, fmt.Errorf("failed to parse user id %s: %w", userID, err)
	}
	return user, nil
}
