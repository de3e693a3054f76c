package session

import "errors"

var (
	// ErrSessionNotFound indicates a heartbeat or submission named a token
	// with no active draft. The caller recovers by starting a new session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the draft exceeded the inactivity window.
	// Expired drafts cannot be heartbeat-ed or submitted.
	ErrSessionExpired = errors.New("session expired")
)
