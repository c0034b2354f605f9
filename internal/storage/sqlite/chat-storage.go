package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type ChatStorage struct {
	db *sql.DB
}

func NewChatStorage(db *sql.DB) *ChatStorage {
	return &ChatStorage{
		db: db,
	}
}

func (s *ChatStorage) CreateSession(ctx context.Context, userID uuid.UUID, title string) (model.Session, error) {
	now := time.Now().UTC()
	session := model.Session{
		SessionID: uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.SessionID.String(), userID.String(), title, now, now,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return session, nil
}

func (s *ChatStorage) GetSession(ctx context.Context, sessionID uuid.UUID) (model.Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, title, created_at, updated_at
		   FROM chat_sessions WHERE id = ?`,
		sessionID.String(),
	)
	return scanSession(row)
}

func (s *ChatStorage) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, title, created_at, updated_at
		   FROM chat_sessions
		  WHERE user_id = ?
		  ORDER BY created_at DESC, rowid DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}

func (s *ChatStorage) RenameSession(ctx context.Context, sessionID uuid.UUID, title string) (model.Session, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE chat_sessions SET title = ?, updated_at = ? WHERE id = ?`,
		title, now, sessionID.String(),
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to rename session %s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return model.Session{}, model.ErrSessionNotFound
	}
	return s.GetSession(ctx, sessionID)
}

func (s *ChatStorage) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	// Messages go with the session through ON DELETE CASCADE.
	res, err := s.db.ExecContext(
		ctx, `DELETE FROM chat_sessions WHERE id = ?`, sessionID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *ChatStorage) AddMessage(
	ctx context.Context,
	sessionID uuid.UUID,
	body string,
	source model.MessageSource,
) (model.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(
		ctx, `SELECT 1 FROM chat_sessions WHERE id = ?`, sessionID.String(),
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Message{}, model.ErrSessionNotFound
		}
		return model.Message{}, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}

	now := time.Now().UTC()
	message := model.Message{
		MessageID: uuid.New(),
		SessionID: sessionID,
		Source:    source,
		Body:      body,
		CreatedAt: now,
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		message.MessageID.String(), sessionID.String(), string(source), body, now,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	_, err = tx.ExecContext(
		ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`,
		now, sessionID.String(),
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to bump session %s: %w", sessionID, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Message{}, fmt.Errorf("failed to commit tx: %w", err)
	}
	return message, nil
}

func (s *ChatStorage) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]model.Message, error) {
	var exists int
	err := s.db.QueryRowContext(
		ctx, `SELECT 1 FROM chat_sessions WHERE id = ?`, sessionID.String(),
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, role, content, created_at
		   FROM messages
		  WHERE session_id = ?
		  ORDER BY created_at ASC, rowid ASC`,
		sessionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var (
			message           model.Message
			messageID, sessID string
			role              string
		)
		if err := rows.Scan(&messageID, &sessID, &role, &message.Body, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if message.MessageID, err = uuid.Parse(messageID); err != nil {
			return nil, fmt.Errorf("failed to parse message id %s: %w", messageID, err)
		}
		if message.SessionID, err = uuid.Parse(sessID); err != nil {
			return nil, fmt.Errorf("failed to parse session id %s: %w", sessID, err)
		}
		message.Source = model.MessageSource(role)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var (
		session        model.Session
		sessID, userID string
	)
	err := row.Scan(&sessID, &userID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, model.ErrSessionNotFound
		}
		return model.Session{}, fmt.Errorf("scan failed: %w", err)
	}
	if session.SessionID, err = uuid.Parse(sessID); err != nil {
		return model.Session{}, fmt.Errorf("failed to parse session id %s: %w", sessID, err)
	}
	if session.UserID, err = uuid.Parse(userID); err != nil {
		return model.Session{}, fmt.Errorf("failed to parse user id %s: %w", userID, err)
	}
	return session, nil
}
