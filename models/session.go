package models

import "time"

// AccountStatus is the approval state of a user account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountPending   AccountStatus = "pending"
	AccountSuspended AccountStatus = "suspended"
)

// Session describes an authenticated client session.
type Session struct {
	UserID       int64         `json:"user_id"`
	Login        string        `json:"login"`
	Status       AccountStatus `json:"status"`
	AccessToken  string        `json:"access_token,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// Active reports whether saves are allowed for this session.
func (s *Session) Active() bool {
	return s != nil && s.Status == AccountActive
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || s.AccessToken == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}
