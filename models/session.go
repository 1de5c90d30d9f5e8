// File: models/session.go
package models

import "time"

// AuthSession is the server-held counterpart of the browser session: the raw
// upstream bearer token plus the claims decoded from it. Destroyed on logout
// or on the first 401 relayed by the upstream.
type AuthSession struct {
	SessionID     string    `json:"sessionId"`
	Token         string    `json:"token"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`

	// User is nil when the token could not be decoded. The session is still
	// Authenticated in that case; the upstream 401 is the only invalidator.
	User *SessionUser `json:"user,omitempty"`
}

// SessionUser holds the claims decoded from the bearer token.
type SessionUser struct {
	Subject  string    `json:"subject,omitempty"`
	Username string    `json:"username,omitempty"`
	Role     string    `json:"role,omitempty"`
	Expiry   time.Time `json:"expiry,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s *AuthSession) Authenticated() bool {
	return s != nil && s.Token != ""
}
