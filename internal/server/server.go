// Package server is the HTTP transport: routing, JSON bodies, CORS and
// token auth. All chat semantics live in the usecase layer.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/docchat/internal/model"
	"github.com/iamvkosarev/docchat/internal/observability"
	"github.com/iamvkosarev/docchat/internal/usecase"
)

const authCookieName = "docchat_token"

type ServerDeps struct {
	User *usecase.UserUsecase
	Chat *usecase.ChatUsecase
}

type Server struct {
	ServerDeps
	allowedOrigin string
}

func NewServer(deps ServerDeps, allowedOrigin string) http.Handler {
	s := &Server{
		ServerDeps:    deps,
		allowedOrigin: allowedOrigin,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleMe)

	mux.Handle("GET /api/chatHistory/sessions", s.requireAuth(s.handleListSessions))
	mux.Handle("POST /api/chatHistory/sessions", s.requireAuth(s.handleCreateSession))
	mux.Handle("PUT /api/chatHistory/sessions/{id}", s.requireAuth(s.handleRenameSession))
	mux.Handle("DELETE /api/chatHistory/sessions/{id}", s.requireAuth(s.handleDeleteSession))
	mux.Handle("GET /api/chatHistory/sessions/{id}/messages", s.requireAuth(s.handleListMessages))
	mux.Handle("POST /api/chat", s.requireAuth(s.handleChat))

	return chainMiddlewares(mux, s.withCORS, withRequestID, withLogging)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			observability.LoggerFromContext(r.Context()).Info(
				"request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).String(),
			)
		},
	)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			ctx := observability.WithRequestID(r.Context(), uuid.NewString())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		},
	)
}

func chainMiddlewares(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

type ctxKey string

const ctxKeyUser ctxKey = "user"

// requireAuth resolves the request's token into a user and stores it in the
// context. Requests without a valid token get 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			user, err := s.User.UserForToken(r.Context(), token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

func userFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(model.User)
	return user, ok
}
