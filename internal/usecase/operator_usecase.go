package usecase

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/pkg/security"
)

// OperatorAccount is the single administrative login, configured out of band.
// An empty PasswordHash disables operator login.
type OperatorAccount struct {
	Username     string
	PasswordHash string
	TOTPSecret   string
}

// OperatorUsecase authenticates the operator who may list users and read the audit log.
type OperatorUsecase struct {
	account  OperatorAccount
	sessions *SessionUsecase
}

func NewOperatorUsecase(a OperatorAccount, s *SessionUsecase) *OperatorUsecase {
	return &OperatorUsecase{account: a, sessions: s}
}

// Login checks the password and, when a TOTP secret is configured, the one-time code.
func (u *OperatorUsecase) Login(ctx context.Context, username, password, code string) (*domain.SessionResponse, error) {
	if u.account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(u.account.Username)) != 1 {
		return nil, ErrInvalidCredentials
	}

	// 1. Verify Password using Argon2id
	match, err := security.ComparePassword(password, u.account.PasswordHash)
	if err != nil || !match {
		slog.Warn("operator login failed", "username", username)
		return nil, ErrInvalidCredentials
	}

	// 2. Second factor
	if u.account.TOTPSecret != "" {
		if code == "" {
			return nil, ErrMFARequired
		}
		if !security.VerifyMFACode(code, u.account.TOTPSecret) {
			slog.Warn("operator mfa failed", "username", username)
			return nil, ErrInvalidMFACode
		}
	}

	return u.sessions.IssueOperator(ctx, username)
}
