package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toSessionResponse(session model.Session) sessionResponse {
	return sessionResponse{
		ID:        session.SessionID.String(),
		UserID:    session.UserID.String(),
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func toMessageResponses(messages []model.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(
			out, messageResponse{
				ID:        message.MessageID.String(),
				SessionID: message.SessionID.String(),
				Role:      string(message.Source),
				Content:   message.Body,
				CreatedAt: message.CreatedAt,
			},
		)
	}
	return out
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	sessions, err := s.Chat.ListSessions(r.Context(), user.UserID)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionResponse(session))
	}
	respondJSON(w, http.StatusOK, out)
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req createSessionRequest
	_ = decodeJSON(r, &req)

	session, err := s.Chat.NewSession(r.Context(), user.UserID)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title != "" && title != model.DefaultSessionTitle {
		if session, err = s.Chat.RenameSession(r.Context(), user.UserID, session.SessionID, title); err != nil {
			respondUsecaseError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Chat session not found")
		return
	}

	var req renameSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	session, err := s.Chat.RenameSession(r.Context(), user.UserID, sessionID, title)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	if err := s.Chat.DeleteSession(r.Context(), user.UserID, sessionID); err != nil {
		respondUsecaseError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	messages, err := s.Chat.Messages(r.Context(), user.UserID, sessionID)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMessageResponses(messages))
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string            `json:"session_id"`
	Answer    string            `json:"answer"`
	Messages  []messageResponse `json:"messages"`
}

// handleChat runs a full send: resolve (or create) the target session,
// append the question, ask the provider, append the reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "Question is required.")
		return
	}

	var sessionID uuid.UUID
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			respondError(w, http.StatusNotFound, "Chat session not found")
			return
		}
		if err := s.Chat.LoadSession(r.Context(), user.UserID, parsed); err != nil {
			respondUsecaseError(w, err)
			return
		}
		sessionID = parsed
	} else if current, ok := s.Chat.CurrentSession(user.UserID); ok {
		sessionID = current
	} else {
		session, err := s.Chat.NewSession(r.Context(), user.UserID)
		if err != nil {
			respondUsecaseError(w, err)
			return
		}
		sessionID = session.SessionID
	}

	appended, err := s.Chat.SendMessage(r.Context(), user.UserID, sessionID, req.Question)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}

	answer := ""
	for _, message := range appended {
		if message.Source == model.MessageSourceAssistant {
			answer = message.Body
		}
	}
	respondJSON(
		w, http.StatusOK, chatResponse{
			SessionID: sessionID.String(),
			Answer:    answer,
			Messages:  toMessageResponses(appended),
		},
	)
}
