package registry

import (
	"strings"
	"unicode/utf8"

	"github.com/example/chat-relay/domain/chat"
)

// ValidateUsername checks that the trimmed username length is within bounds.
func (l Limits) ValidateUsername(username string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	if n < l.MinUsername || n > l.MaxUsername {
		return chat.ErrInvalidUsername
	}
	return nil
}

// ValidateRoom checks that the trimmed room name length is within bounds.
func (l Limits) ValidateRoom(room string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(room))
	if n < l.MinRoom || n > l.MaxRoom {
		return chat.ErrInvalidRoom
	}
	return nil
}

// ValidateMessage checks that the message is non-blank and that its raw
// length does not exceed the maximum.
func (l Limits) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return chat.ErrMessageEmpty
	}
	if utf8.RuneCountInString(message) > l.MaxMessage {
		return chat.ErrMessageTooLong
	}
	return nil
}
