package domain

import (
	"context"
	"errors"
	"time"
)

// ErrRefreshTokenInvalid is returned for an unknown or expired refresh token.
var ErrRefreshTokenInvalid = errors.New("refresh token expired or invalid")

// SessionResponse is returned to a caller the gate has just admitted.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenRepository stores opaque refresh tokens (usually in Redis).
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, username string, token string, ttl time.Duration) error
	GetUsernameByRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}
