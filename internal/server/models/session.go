package models

import "time"

// Session maps an opaque auth token to a user until Expires.
type Session struct {
	TokenHash []byte
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}
