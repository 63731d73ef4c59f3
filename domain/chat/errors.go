package chat

import "errors"

// Validation errors (invalid input class).
var (
	ErrInvalidUsername = errors.New("username length is out of bounds")
	ErrInvalidRoom     = errors.New("room name length is out of bounds")
	ErrMessageEmpty    = errors.New("message cannot be empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
)

// Registry and session errors.
var (
	ErrUsernameTaken = errors.New("username is already taken in this room")
	ErrAlreadyBound  = errors.New("connection is already in a room")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limit exceeded, please slow down")
)
