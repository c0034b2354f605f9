package server

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/iamvkosarev/docchat/internal/model"
)

const minPasswordLen = 8

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		ID:    user.UserID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if len(req.Password) < minPasswordLen {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	user, token, err := s.User.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	setAuthCookie(w, token)
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := s.User.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondUsecaseError(w, err)
		return
	}
	setAuthCookie(w, token)
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFromRequest(r); token != "" {
		if err := s.User.Logout(r.Context(), token); err != nil {
			respondUsecaseError(w, err)
			return
		}
	}
	clearAuthCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, toUserResponse(user))
}
