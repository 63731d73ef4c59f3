package registry

import (
	"os"
	"strconv"
	"time"
)

// Limits holds the configurable validation and rate-limiting bounds.
type Limits struct {
	MinUsername int
	MaxUsername int
	MinRoom     int
	MaxRoom     int
	MaxMessage  int
	RateCap     int
	RateWindow  time.Duration
}

// DefaultLimits returns the default bounds.
func DefaultLimits() Limits {
	return Limits{
		MinUsername: 2,
		MaxUsername: 20,
		MinRoom:     2,
		MaxRoom:     20,
		MaxMessage:  500,
		RateCap:     10,
		RateWindow:  5000 * time.Millisecond,
	}
}

// LimitsFromEnv returns Limits populated from environment variables.
// Falls back to defaults when a variable is unset or not a positive integer.
func LimitsFromEnv() Limits {
	l := DefaultLimits()
	l.MinUsername = envInt("CHAT_MIN_USERNAME", l.MinUsername)
	l.MaxUsername = envInt("CHAT_MAX_USERNAME", l.MaxUsername)
	l.MinRoom = envInt("CHAT_MIN_ROOM", l.MinRoom)
	l.MaxRoom = envInt("CHAT_MAX_ROOM", l.MaxRoom)
	l.MaxMessage = envInt("CHAT_MAX_MESSAGE", l.MaxMessage)
	l.RateCap = envInt("CHAT_RATE_CAP", l.RateCap)
	if ms := envInt("CHAT_RATE_WINDOW_MS", int(l.RateWindow.Milliseconds())); ms > 0 {
		l.RateWindow = time.Duration(ms) * time.Millisecond
	}
	return l.sanitized()
}

func (l Limits) sanitized() Limits {
	d := DefaultLimits()
	if l.MinUsername <= 0 {
		l.MinUsername = d.MinUsername
	}
	if l.MaxUsername < l.MinUsername {
		l.MaxUsername = d.MaxUsername
	}
	if l.MinRoom <= 0 {
		l.MinRoom = d.MinRoom
	}
	if l.MaxRoom < l.MinRoom {
		l.MaxRoom = d.MaxRoom
	}
	if l.MaxMessage <= 0 {
		l.MaxMessage = d.MaxMessage
	}
	if l.RateCap <= 0 {
		l.RateCap = d.RateCap
	}
	if l.RateWindow <= 0 {
		l.RateWindow = d.RateWindow
	}
	return l
}

func envInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
