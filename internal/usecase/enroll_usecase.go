package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
	"github.com/FilipeAphrody/vocalgate/pkg/textmatch"
)

// EnrollUsecase validates a spoken passphrase and stores the speaker's profile.
type EnrollUsecase struct {
	profiles    domain.ProfileRepository
	transcriber domain.Transcriber
	extractor   domain.FeatureExtractor
	matcher     textmatch.Matcher
	metrics     *observe.Metrics
}

func NewEnrollUsecase(
	p domain.ProfileRepository,
	t domain.Transcriber,
	e domain.FeatureExtractor,
	m textmatch.Matcher,
	metrics *observe.Metrics,
) *EnrollUsecase {
	return &EnrollUsecase{
		profiles:    p,
		transcriber: t,
		extractor:   e,
		matcher:     m,
		metrics:     metrics,
	}
}

// Enroll transcribes w, checks it against passphrase, extracts a voice vector
// and upserts the profile, replacing any earlier one for username.
// A passphrase mismatch is a failed result, not an error.
func (u *EnrollUsecase) Enroll(ctx context.Context, username string, w audio.Waveform, passphrase string) (domain.EnrollResult, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(passphrase) == "" {
		u.metrics.RecordEnrollment(ctx, "invalid")
		return domain.EnrollResult{Reason: domain.ReasonInvalidInput, Message: "Username and passphrase are required"}, nil
	}

	// 1. Passphrase.
	text, err := transcribe(ctx, u.transcriber, u.metrics, w)
	if err != nil {
		u.metrics.RecordEnrollment(ctx, "error")
		return domain.EnrollResult{}, err
	}
	if !u.matcher.Match(text, passphrase) {
		u.metrics.RecordEnrollment(ctx, "mismatch")
		return domain.EnrollResult{
			Reason:  domain.ReasonPassphraseMismatch,
			Message: "Passphrase mismatch during enrollment",
		}, nil
	}

	// 2. Voice vector.
	vec, err := extract(ctx, u.extractor, u.metrics, w)
	if err != nil {
		u.metrics.RecordEnrollment(ctx, "error")
		return domain.EnrollResult{}, err
	}

	// 3. Unconditional overwrite.
	err = u.profiles.Upsert(ctx, &domain.UserProfile{
		Username:   username,
		Passphrase: passphrase,
		Vector:     vec,
	})
	if err != nil {
		u.metrics.RecordEnrollment(ctx, "error")
		return domain.EnrollResult{}, fmt.Errorf("failed to store profile: %w", err)
	}

	u.metrics.RecordEnrollment(ctx, "ok")
	return domain.EnrollResult{
		OK:      true,
		Reason:  domain.ReasonEnrolled,
		Message: fmt.Sprintf("Successfully enrolled user: %s", username),
	}, nil
}

// ListUsers returns the enrolled usernames in ascending order.
func (u *EnrollUsecase) ListUsers(ctx context.Context) ([]string, error) {
	return u.profiles.List(ctx)
}
