package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/chat-relay/domain/chat"
)

func TestLimits_ValidateUsername(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{
			name:     "valid username",
			username: "alice",
			wantErr:  nil,
		},
		{
			name:     "minimum length",
			username: "ab",
			wantErr:  nil,
		},
		{
			name:     "maximum length",
			username: strings.Repeat("a", 20),
			wantErr:  nil,
		},
		{
			name:     "too short",
			username: "a",
			wantErr:  chat.ErrInvalidUsername,
		},
		{
			name:     "too long",
			username: strings.Repeat("a", 21),
			wantErr:  chat.ErrInvalidUsername,
		},
		{
			name:     "empty",
			username: "",
			wantErr:  chat.ErrInvalidUsername,
		},
		{
			name:     "whitespace only",
			username: "   ",
			wantErr:  chat.ErrInvalidUsername,
		},
		{
			name:     "padding does not count toward length",
			username: " a ",
			wantErr:  chat.ErrInvalidUsername,
		},
		{
			name:     "padded but valid once trimmed",
			username: "  bob  ",
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.ValidateUsername(tt.username)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestLimits_ValidateRoom(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name    string
		room    string
		wantErr error
	}{
		{
			name:    "valid room",
			room:    "lobby",
			wantErr: nil,
		},
		{
			name:    "minimum length",
			room:    "ab",
			wantErr: nil,
		},
		{
			name:    "too long",
			room:    strings.Repeat("r", 21),
			wantErr: chat.ErrInvalidRoom,
		},
		{
			name:    "too short",
			room:    "a",
			wantErr: chat.ErrInvalidRoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.ValidateRoom(tt.room)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRoom(%q) = %v, want %v", tt.room, err, tt.wantErr)
			}
		})
	}
}

func TestLimits_ValidateMessage(t *testing.T) {
	limits := DefaultLimits()

	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{
			name:    "valid message",
			message: "hello",
			wantErr: nil,
		},
		{
			name:    "maximum length",
			message: strings.Repeat("m", 500),
			wantErr: nil,
		},
		{
			name:    "empty",
			message: "",
			wantErr: chat.ErrMessageEmpty,
		},
		{
			name:    "whitespace only",
			message: " \t\n ",
			wantErr: chat.ErrMessageEmpty,
		},
		{
			name:    "too long",
			message: strings.Repeat("m", 501),
			wantErr: chat.ErrMessageTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.ValidateMessage(tt.message)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLimitsSanitized(t *testing.T) {
	var zero Limits
	got := zero.sanitized()
	want := DefaultLimits()

	if got != want {
		t.Errorf("sanitized() zero value = %+v, want defaults %+v", got, want)
	}
}
