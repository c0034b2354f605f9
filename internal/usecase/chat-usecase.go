package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
	"github.com/iamvkosarev/docchat/internal/observability"
	"github.com/iamvkosarev/docchat/pkg/titles"
)

// MessageAnswerError is stored as the assistant reply when the answer
// provider fails. The failure never propagates out of SendMessage.
const MessageAnswerError = "Error processing your request."

type ChatStorage interface {
	CreateSession(ctx context.Context, userID uuid.UUID, title string) (model.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (model.Session, error)
	ListUserSessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error)
	RenameSession(ctx context.Context, sessionID uuid.UUID, title string) (model.Session, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	AddMessage(ctx context.Context, sessionID uuid.UUID, body string, source model.MessageSource) (model.Message, error)
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]model.Message, error)
}

type AnswerProvider interface {
	Answer(ctx context.Context, question string, history []model.Message) (string, error)
}

type ChatUsecaseDeps struct {
	ChatStorage ChatStorage
	Answer      AnswerProvider
}

// ChatUsecase drives the session lifecycle: creation, selection, message
// append ordering, title derivation and the per-session loading flag. The
// active pointers and loading flags are process-local and never persisted.
type ChatUsecase struct {
	ChatUsecaseDeps

	mu      sync.Mutex
	loading map[uuid.UUID]bool
	active  map[uuid.UUID]uuid.UUID
}

func NewChatUsecase(deps ChatUsecaseDeps) *ChatUsecase {
	return &ChatUsecase{
		ChatUsecaseDeps: deps,
		loading:         make(map[uuid.UUID]bool),
		active:          make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *ChatUsecase) ListSessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	return c.ChatStorage.ListUserSessions(ctx, userID)
}

func (c *ChatUsecase) NewSession(ctx context.Context, userID uuid.UUID) (model.Session, error) {
	session, err := c.ChatStorage.CreateSession(ctx, userID, model.DefaultSessionTitle)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	c.selectSession(userID, session.SessionID)
	return session, nil
}

func (c *ChatUsecase) LoadSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := c.getOwnedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	c.selectSession(userID, sessionID)
	return nil
}

func (c *ChatUsecase) RenameSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	title string,
) (model.Session, error) {
	if _, err := c.getOwnedSession(ctx, userID, sessionID); err != nil {
		return model.Session{}, err
	}
	return c.ChatStorage.RenameSession(ctx, sessionID, title)
}

// DeleteSession removes the session and all its messages. When the deleted
// session was the active one, the first remaining session becomes active,
// or the pointer is cleared if none remain.
func (c *ChatUsecase) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := c.getOwnedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := c.ChatStorage.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.mu.Lock()
	delete(c.loading, sessionID)
	wasActive := c.active[userID] == sessionID
	if wasActive {
		delete(c.active, userID)
	}
	c.mu.Unlock()

	if !wasActive {
		return nil
	}
	remaining, err := c.ChatStorage.ListUserSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list sessions after delete: %w", err)
	}
	if len(remaining) > 0 {
		c.selectSession(userID, remaining[0].SessionID)
	}
	return nil
}

func (c *ChatUsecase) Messages(ctx context.Context, userID, sessionID uuid.UUID) ([]model.Message, error) {
	if _, err := c.getOwnedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return c.ChatStorage.ListMessages(ctx, sessionID)
}

func (c *ChatUsecase) CurrentSession(userID uuid.UUID) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessionID, ok := c.active[userID]
	return sessionID, ok
}

func (c *ChatUsecase) IsLoading(sessionID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading[sessionID]
}

// SendMessage appends the user message, derives a title for a fresh
// session, asks the answer provider and appends its reply. The user message
// is durable before the provider is called, a provider failure becomes a
// stored error reply, and the loading flag is cleared on every path.
func (c *ChatUsecase) SendMessage(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	text string,
) ([]model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if sessionID == uuid.Nil {
		return nil, model.ErrNoActiveSession
	}
	session, err := c.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := c.beginSend(sessionID); err != nil {
		return nil, err
	}
	defer c.endSend(sessionID)

	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	history, err := c.ChatStorage.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	userMessage, err := c.ChatStorage.AddMessage(ctx, sessionID, text, model.MessageSourceUser)
	if err != nil {
		return nil, fmt.Errorf("failed to add user message: %w", err)
	}

	// First message into a still-untitled session names it. Best-effort: a
	// rename failure must not abort the send.
	if len(history) == 0 && session.Title == model.DefaultSessionTitle {
		title := titles.Derive(text, titles.DefaultMaxLen)
		if _, err := c.ChatStorage.RenameSession(ctx, sessionID, title); err != nil {
			log.Warn("failed to rename session", "error", err)
		}
	}

	answer, err := c.Answer.Answer(ctx, text, history)
	if err != nil {
		log.Warn("answer provider failed", "error", err)
		answer = MessageAnswerError
	}

	assistantMessage, err := c.ChatStorage.AddMessage(ctx, sessionID, answer, model.MessageSourceAssistant)
	if err != nil {
		// The reply is lost but the user message is already durable; the
		// loading flag is still cleared by the deferred endSend.
		log.Error("failed to add assistant message", "error", err)
		return []model.Message{userMessage}, nil
	}

	return []model.Message{userMessage, assistantMessage}, nil
}

// beginSend atomically checks and sets the loading flag, so two racing
// sends for one session cannot both pass the guard.
func (c *ChatUsecase) beginSend(sessionID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[sessionID] {
		return model.ErrAnswerInFlight
	}
	c.loading[sessionID] = true
	return nil
}

func (c *ChatUsecase) endSend(sessionID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.loading, sessionID)
}

func (c *ChatUsecase) selectSession(userID, sessionID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active[userID] = sessionID
}

// getOwnedSession reports a session owned by another user as not found, so
// callers cannot probe for existence of other users' sessions.
func (c *ChatUsecase) getOwnedSession(ctx context.Context, userID, sessionID uuid.UUID) (model.Session, error) {
	session, err := c.ChatStorage.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.Session{}, model.ErrSessionNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return model.Session{}, model.ErrSessionNotFound
	}
	return session, nil
}
