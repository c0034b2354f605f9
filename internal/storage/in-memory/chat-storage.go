package in_memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type sessionRecord struct {
	session model.Session
	seq     int64
}

// ChatStorage keeps sessions and their messages in process memory. The
// server handles requests concurrently, so access is guarded by a RWMutex.
type ChatStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionRecord
	messages map[uuid.UUID][]model.Message
	seq      int64
}

func NewChatStorage() *ChatStorage {
	return &ChatStorage{
		sessions: make(map[uuid.UUID]*sessionRecord),
		messages: make(map[uuid.UUID][]model.Message),
	}
}

func (s *ChatStorage) CreateSession(_ context.Context, userID uuid.UUID, title string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session := model.Session{
		SessionID: uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.seq++
	s.sessions[session.SessionID] = &sessionRecord{session: session, seq: s.seq}
	s.messages[session.SessionID] = make([]model.Message, 0)
	return session, nil
}

func (s *ChatStorage) GetSession(_ context.Context, sessionID uuid.UUID) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, model.ErrSessionNotFound
	}
	return rec.session, nil
}

func (s *ChatStorage) ListUserSessions(_ context.Context, userID uuid.UUID) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*sessionRecord, 0)
	for _, rec := range s.sessions {
		if rec.session.UserID == userID {
			records = append(records, rec)
		}
	}
	// Newest first, matching the relational variant's created_at DESC.
	sort.Slice(
		records, func(i, j int) bool {
			return records[i].seq > records[j].seq
		},
	)
	sessions := make([]model.Session, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, rec.session)
	}
	return sessions, nil
}

func (s *ChatStorage) RenameSession(_ context.Context, sessionID uuid.UUID, title string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, model.ErrSessionNotFound
	}
	rec.session.Title = title
	rec.session.UpdatedAt = time.Now()
	return rec.session, nil
}

func (s *ChatStorage) DeleteSession(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return model.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}

func (s *ChatStorage) AddMessage(
	_ context.Context,
	sessionID uuid.UUID,
	body string,
	source model.MessageSource,
) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return model.Message{}, model.ErrSessionNotFound
	}
	now := time.Now()
	message := model.Message{
		MessageID: uuid.New(),
		SessionID: sessionID,
		Source:    source,
		Body:      body,
		CreatedAt: now,
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)
	rec.session.UpdatedAt = now
	return message, nil
}

func (s *ChatStorage) ListMessages(_ context.Context, sessionID uuid.UUID) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	out := make([]model.Message, len(messages))
	copy(out, messages)
	return out, nil
}
