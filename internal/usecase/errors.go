package usecase

import "errors"

// ErrCollaborator marks a failure of the transcriber, feature extractor or
// audio capture to produce output. It is never a denial: callers must report
// it as a fault, not as "access denied".
var ErrCollaborator = errors.New("voice pipeline failure")

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMFARequired        = errors.New("mfa_challenge_required")
	ErrInvalidMFACode     = errors.New("invalid mfa code")
)
