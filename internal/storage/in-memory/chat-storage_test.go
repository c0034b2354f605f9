package in_memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

func TestChatStorage_AppendOrdering(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()
	userID := uuid.New()

	first, err := storage.CreateSession(ctx, userID, model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	second, err := storage.CreateSession(ctx, userID, model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// Interleave appends between the two sessions.
	for i := 0; i < 5; i++ {
		if _, err := storage.AddMessage(ctx, first.SessionID, fmt.Sprintf("a%d", i), model.MessageSourceUser); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
		if _, err := storage.AddMessage(ctx, second.SessionID, fmt.Sprintf("b%d", i), model.MessageSourceUser); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	messages, err := storage.ListMessages(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(messages))
	}
	for i, message := range messages {
		if want := fmt.Sprintf("a%d", i); message.Body != want {
			t.Errorf("messages[%d].Body = %q, want %q", i, message.Body, want)
		}
	}
}

func TestChatStorage_AddMessageBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()

	session, err := storage.CreateSession(ctx, uuid.New(), model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	message, err := storage.AddMessage(ctx, session.SessionID, "hello", model.MessageSourceUser)
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	got, err := storage.GetSession(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UpdatedAt.Before(message.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want >= message CreatedAt %v", got.UpdatedAt, message.CreatedAt)
	}
}

func TestChatStorage_CascadeDelete(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()

	session, err := storage.CreateSession(ctx, uuid.New(), model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := storage.AddMessage(ctx, session.SessionID, "msg", model.MessageSourceUser); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	if err := storage.DeleteSession(ctx, session.SessionID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := storage.ListMessages(ctx, session.SessionID); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("ListMessages() after delete error = %v, want ErrSessionNotFound", err)
	}
	if _, err := storage.GetSession(ctx, session.SessionID); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestChatStorage_ListUserSessionsOrder(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()
	userID := uuid.New()

	ids := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		session, err := storage.CreateSession(ctx, userID, model.DefaultSessionTitle)
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		ids = append(ids, session.SessionID)
	}
	// Another user's session must not leak into the list.
	if _, err := storage.CreateSession(ctx, uuid.New(), model.DefaultSessionTitle); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	sessions, err := storage.ListUserSessions(ctx, userID)
	if err != nil {
		t.Fatalf("ListUserSessions() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	// Newest first.
	for i, session := range sessions {
		if want := ids[len(ids)-1-i]; session.SessionID != want {
			t.Errorf("sessions[%d].SessionID = %v, want %v", i, session.SessionID, want)
		}
	}
}

func TestChatStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()
	unknown := uuid.New()

	if _, err := storage.GetSession(ctx, unknown); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := storage.AddMessage(ctx, unknown, "msg", model.MessageSourceUser); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("AddMessage() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := storage.RenameSession(ctx, unknown, "title"); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("RenameSession() error = %v, want ErrSessionNotFound", err)
	}
	if err := storage.DeleteSession(ctx, unknown); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("DeleteSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestChatStorage_EmptySessionListsNoMessages(t *testing.T) {
	ctx := context.Background()
	storage := NewChatStorage()

	session, err := storage.CreateSession(ctx, uuid.New(), model.DefaultSessionTitle)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	messages, err := storage.ListMessages(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
}
