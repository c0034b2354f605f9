package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is the title every session starts with until the
// first user message renames it.
const DefaultSessionTitle = "New Chat"

type MessageSource string

const (
	MessageSourceUser      = MessageSource("user")
	MessageSourceAssistant = MessageSource("assistant")
)

type Message struct {
	MessageID uuid.UUID
	SessionID uuid.UUID
	Source    MessageSource
	Body      string
	CreatedAt time.Time
}

type Session struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
