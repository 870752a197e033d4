package qrz

import "time"

// ExpirationLayout is the layout Session.Expiration is stored in.
const ExpirationLayout = time.RFC3339

// Session is the authenticated, time limited handle required to query the provider.
type Session struct {
	Username   string
	Key        string
	Expiration string
}

// ExpiresAt parses Expiration.
func (s Session) ExpiresAt() (time.Time, error) {
	return time.Parse(ExpirationLayout, s.Expiration)
}

// Valid reports whether the session has a key and an expiration that is
// still in the future relative to `now`. An expiration that cannot be
// parsed makes the session invalid.
func (s Session) Valid(now time.Time) bool {
	if s.Key == "" || s.Expiration == "" {
		return false
	}
	expiresAt, err := s.ExpiresAt()
	if err != nil {
		return false
	}
	return now.Before(expiresAt)
}
