package identity

import (
	"time"
)

// LoginInput represents login credentials
type LoginInput struct {
	Username string
	Password string
}

// UserInfo is the authenticated user returned with tokens
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResult represents the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// RefreshTokenInput represents a token refresh request
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult represents the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	UserID uint64
	JTI    string
	// TTL is the token's remaining lifetime
	TTL time.Duration
}
