package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
	"github.com/FilipeAphrody/vocalgate/pkg/textmatch"
	"github.com/FilipeAphrody/vocalgate/pkg/voiceprint"
)

// AuthEngine verifies one utterance against an enrolled profile. It is
// stateless; attempt counting lives in LockoutController.
type AuthEngine struct {
	profiles    domain.ProfileRepository
	transcriber domain.Transcriber
	extractor   domain.FeatureExtractor
	matcher     textmatch.Matcher
	threshold   voiceprint.ThresholdPolicy
	metrics     *observe.Metrics
}

// NewAuthEngine wires the engine. metrics may be nil.
func NewAuthEngine(
	p domain.ProfileRepository,
	t domain.Transcriber,
	e domain.FeatureExtractor,
	m textmatch.Matcher,
	policy voiceprint.ThresholdPolicy,
	metrics *observe.Metrics,
) *AuthEngine {
	return &AuthEngine{
		profiles:    p,
		transcriber: t,
		extractor:   e,
		matcher:     m,
		threshold:   policy,
		metrics:     metrics,
	}
}

// Authenticate runs the existence, passphrase and voice checks in that order,
// stopping at the first that fails. Mismatches come back as a denied Decision;
// a returned error means a collaborator or the store failed.
func (a *AuthEngine) Authenticate(ctx context.Context, username string, w audio.Waveform) (domain.Decision, error) {
	if strings.TrimSpace(username) == "" {
		return deny(domain.ReasonInvalidInput, "Username is required"), nil
	}

	// 1. Existence. Unknown identities never reach the transcriber or extractor.
	profile, err := a.profiles.Get(ctx, username)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return deny(domain.ReasonUserNotFound, "User not found"), nil
	}
	if err != nil {
		return domain.Decision{}, fmt.Errorf("failed to load profile: %w", err)
	}

	// 2. Passphrase.
	text, err := transcribe(ctx, a.transcriber, a.metrics, w)
	if err != nil {
		return domain.Decision{}, err
	}
	if !a.matcher.Match(text, profile.Passphrase) {
		return deny(domain.ReasonPassphraseMismatch, "Passphrase mismatch"), nil
	}

	// 3. Voice.
	current, err := extract(ctx, a.extractor, a.metrics, w)
	if err != nil {
		return domain.Decision{}, err
	}
	sim := voiceprint.Score(current, profile.Vector)
	limit := a.threshold.Threshold(profile.Vector)

	d := domain.Decision{Similarity: &sim, Threshold: &limit}
	if sim >= limit {
		d.Granted = true
		d.Reason = domain.ReasonGranted
		d.Message = fmt.Sprintf("Voice match for user %s (sim=%.2f)", username, sim)
	} else {
		d.Reason = domain.ReasonVoiceMismatch
		d.Message = fmt.Sprintf("Voice mismatch for user %s (sim=%.2f)", username, sim)
	}
	return d, nil
}

func deny(reason domain.Reason, msg string) domain.Decision {
	return domain.Decision{Reason: reason, Message: msg}
}

func transcribe(ctx context.Context, t domain.Transcriber, m *observe.Metrics, w audio.Waveform) (string, error) {
	start := time.Now()
	defer m.ObserveStage(ctx, observe.StageTranscribe, start)

	text, err := t.Transcribe(ctx, w)
	if err != nil {
		return "", fmt.Errorf("%w: transcription: %w", ErrCollaborator, err)
	}
	return text, nil
}

func extract(ctx context.Context, e domain.FeatureExtractor, m *observe.Metrics, w audio.Waveform) ([]float64, error) {
	start := time.Now()
	defer m.ObserveStage(ctx, observe.StageExtract, start)

	v, err := e.Extract(w.Samples, w.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: feature extraction: %w", ErrCollaborator, err)
	}
	return v, nil
}
