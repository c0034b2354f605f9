package model

import "errors"

var (
	// ErrSessionNotFound covers both unknown session ids and sessions owned
	// by another user, so callers cannot probe for existence.
	ErrSessionNotFound = errors.New("chat session not found")

	ErrNoActiveSession = errors.New("no active chat session")

	// ErrAnswerInFlight rejects a second send for a session whose assistant
	// reply is still pending.
	ErrAnswerInFlight = errors.New("answer already in flight for this session")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserDoesNotExists  = errors.New("user doesn't exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("auth token not found")
)
