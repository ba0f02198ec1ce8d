package store

import "errors"

var (
	// ErrNotFound means the session code does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidState means the action is not valid for the session's
	// current status (e.g. joining a completed session).
	ErrInvalidState = errors.New("session is not active")

	// ErrForbidden means a non-host attempted a host-only action.
	ErrForbidden = errors.New("only the host can perform this action")

	// ErrValidation wraps missing/malformed input. Use with fmt.Errorf
	// and %w so handlers can match it.
	ErrValidation = errors.New("invalid input")

	// ErrCodeGenerationExhausted means ten consecutive join codes
	// collided with existing sessions. Callers may retry the whole
	// creation.
	ErrCodeGenerationExhausted = errors.New("could not generate a unique session code")
)
