package core

import "errors"

var (
	// ErrInvalidArgument signals rejected input (empty or oversized text).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals a session or message that does not exist or is
	// not owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrRemote signals a completion-service failure. It is only surfaced
	// when the swallow policy is disabled.
	ErrRemote = errors.New("completion service error")
)
