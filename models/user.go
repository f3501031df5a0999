package models

import "time"

// User is an account of the reference remote store.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"-"`

	// Login is the unique user login.
	Login string `json:"login"`

	// Password holds the plaintext password in requests and the argon2id
	// hash once loaded from storage. Never serialized back to clients.
	Password string `json:"password,omitempty"`

	// Status gates saves on the client side.
	Status AccountStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// AuthResponse is returned by login and refresh endpoints. The access token
// is sent in the Authorization header as in every other response.
type AuthResponse struct {
	UserID       int64         `json:"user_id"`
	Login        string        `json:"login"`
	Status       AccountStatus `json:"status"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
}
