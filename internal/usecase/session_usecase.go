package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/pkg/security"
)

const (
	RoleUser     = "user"
	RoleOperator = "operator"
)

// ErrRefreshDisabled is returned by Refresh and Logout when no token store is configured.
var ErrRefreshDisabled = errors.New("refresh tokens are not enabled")

// SessionUsecase issues the tokens handed out after a successful check.
type SessionUsecase struct {
	tokenRepo  domain.TokenRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionUsecase creates the usecase. tokenRepo may be nil, in which case
// only access tokens are issued.
func NewSessionUsecase(t domain.TokenRepository, secret string, accessTTL, refreshTTL time.Duration) *SessionUsecase {
	return &SessionUsecase{
		tokenRepo:  t,
		jwtSecret:  secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueUser creates a session for a user the gate has just admitted.
func (u *SessionUsecase) IssueUser(ctx context.Context, username string) (*domain.SessionResponse, error) {
	return u.issue(ctx, username, RoleUser, u.tokenRepo != nil)
}

// IssueOperator creates an access-only session for the operator account.
func (u *SessionUsecase) IssueOperator(ctx context.Context, username string) (*domain.SessionResponse, error) {
	return u.issue(ctx, username, RoleOperator, false)
}

// Refresh exchanges a refresh token for a new session. The old token is
// revoked, so each refresh token works once.
func (u *SessionUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.SessionResponse, error) {
	if u.tokenRepo == nil {
		return nil, ErrRefreshDisabled
	}
	username, err := u.tokenRepo.GetUsernameByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return u.issue(ctx, username, RoleUser, true)
}

// Logout revokes a refresh token.
func (u *SessionUsecase) Logout(ctx context.Context, refreshToken string) error {
	if u.tokenRepo == nil {
		return ErrRefreshDisabled
	}
	return u.tokenRepo.DeleteRefreshToken(ctx, refreshToken)
}

// Validate parses an access token issued by this usecase.
func (u *SessionUsecase) Validate(token string) (*security.Claims, error) {
	return security.ValidateToken(token, u.jwtSecret)
}

func (u *SessionUsecase) issue(ctx context.Context, username, role string, withRefresh bool) (*domain.SessionResponse, error) {
	// 1. Access token (JWT)
	accessToken, err := security.GenerateAccessToken(username, role, u.jwtSecret, u.accessTTL)
	if err != nil {
		return nil, err
	}

	resp := &domain.SessionResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.accessTTL / time.Second),
	}
	if !withRefresh {
		return resp, nil
	}

	// 2. Opaque refresh token, stored with its own TTL
	refreshToken := uuid.NewString()
	if err := u.tokenRepo.StoreRefreshToken(ctx, username, refreshToken, u.refreshTTL); err != nil {
		return nil, err
	}
	resp.RefreshToken = refreshToken
	return resp, nil
}
