package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iamvkosarev/docchat/internal/model"
	"github.com/iamvkosarev/docchat/internal/observability"
)

type errorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.Logger().Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

// respondUsecaseError maps the error taxonomy onto HTTP statuses.
func respondUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Chat session not found")
	case errors.Is(err, model.ErrNoActiveSession):
		respondError(w, http.StatusBadRequest, "No active chat session")
	case errors.Is(err, model.ErrAnswerInFlight):
		respondError(w, http.StatusConflict, "An answer is already in flight for this session")
	case errors.Is(err, model.ErrUserAlreadyExists):
		respondError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, model.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		observability.Logger().Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     authCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	)
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     authCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	)
}
