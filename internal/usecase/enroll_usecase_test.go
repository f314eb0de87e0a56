package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/pkg/textmatch"
)

func TestEnrollThenListAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	profiles := newMemProfiles()
	tr := &fakeTranscriber{text: "Open, sesame!"}
	ex := &fakeExtractor{vec: []float64{1, 0, 0}}
	enroll := NewEnrollUsecase(profiles, tr, ex, textmatch.Subset{}, nil)

	res, err := enroll.Enroll(ctx, "alice", utterance, "open sesame")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, domain.ReasonEnrolled, res.Reason)
	assert.Equal(t, "Successfully enrolled user: alice", res.Message)

	users, err := enroll.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, "alice")

	tr.text = "please open sesame now"
	ex.vec = []float64{0.98, 0.1, 0}
	engine := NewAuthEngine(profiles, tr, ex, textmatch.Subset{}, defaultPolicy, nil)
	d, err := engine.Authenticate(ctx, "alice", utterance)
	require.NoError(t, err)
	assert.True(t, d.Granted)
}

func TestEnrollPassphraseMismatch(t *testing.T) {
	profiles := newMemProfiles()
	ex := &fakeExtractor{vec: []float64{1}}
	enroll := NewEnrollUsecase(profiles, &fakeTranscriber{text: "open"}, ex, textmatch.Subset{}, nil)

	res, err := enroll.Enroll(context.Background(), "alice", utterance, "open sesame")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, domain.ReasonPassphraseMismatch, res.Reason)
	assert.Equal(t, "Passphrase mismatch during enrollment", res.Message)
	assert.Zero(t, ex.calls)
	assert.Empty(t, profiles.data)
}

func TestReEnrollOverwrites(t *testing.T) {
	ctx := context.Background()
	profiles := newMemProfiles()
	tr := &fakeTranscriber{text: "open sesame"}
	ex := &fakeExtractor{vec: []float64{1, 0, 0}}
	enroll := NewEnrollUsecase(profiles, tr, ex, textmatch.Subset{}, nil)

	_, err := enroll.Enroll(ctx, "alice", utterance, "open sesame")
	require.NoError(t, err)

	tr.text = "blue moon"
	ex.vec = []float64{0, 1, 0}
	res, err := enroll.Enroll(ctx, "alice", utterance, "blue moon")
	require.NoError(t, err)
	require.True(t, res.OK)

	p := profiles.data["alice"]
	assert.Equal(t, "blue moon", p.Passphrase)
	assert.Equal(t, []float64{0, 1, 0}, p.Vector)

	// The old voice no longer matches.
	tr.text = "blue moon"
	ex.vec = []float64{1, 0, 0}
	engine := NewAuthEngine(profiles, tr, ex, textmatch.Subset{}, defaultPolicy, nil)
	d, err := engine.Authenticate(ctx, "alice", utterance)
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonVoiceMismatch, d.Reason)
}

func TestEnrollExactStrategy(t *testing.T) {
	enroll := NewEnrollUsecase(newMemProfiles(), &fakeTranscriber{text: "please open sesame"}, &fakeExtractor{vec: []float64{1}}, textmatch.Exact{}, nil)

	res, err := enroll.Enroll(context.Background(), "alice", utterance, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonPassphraseMismatch, res.Reason)
}

func TestEnrollInvalidInput(t *testing.T) {
	tr := &fakeTranscriber{text: "x"}
	enroll := NewEnrollUsecase(newMemProfiles(), tr, &fakeExtractor{}, textmatch.Subset{}, nil)

	for _, tc := range [][2]string{{"", "open sesame"}, {"alice", " "}} {
		res, err := enroll.Enroll(context.Background(), tc[0], utterance, tc[1])
		require.NoError(t, err)
		assert.Equal(t, domain.ReasonInvalidInput, res.Reason)
	}
	assert.Zero(t, tr.calls)
}

func TestEnrollFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("transcriber", func(t *testing.T) {
		enroll := NewEnrollUsecase(newMemProfiles(), &fakeTranscriber{err: errBoom}, &fakeExtractor{}, textmatch.Subset{}, nil)
		_, err := enroll.Enroll(ctx, "alice", utterance, "open sesame")
		assert.ErrorIs(t, err, ErrCollaborator)
	})

	t.Run("extractor", func(t *testing.T) {
		enroll := NewEnrollUsecase(newMemProfiles(), &fakeTranscriber{text: "open sesame"}, &fakeExtractor{err: errBoom}, textmatch.Subset{}, nil)
		_, err := enroll.Enroll(ctx, "alice", utterance, "open sesame")
		assert.ErrorIs(t, err, ErrCollaborator)
	})

	t.Run("store write is surfaced, not retried", func(t *testing.T) {
		profiles := newMemProfiles()
		profiles.err = errBoom
		enroll := NewEnrollUsecase(profiles, &fakeTranscriber{text: "open sesame"}, &fakeExtractor{vec: []float64{1}}, textmatch.Subset{}, nil)
		_, err := enroll.Enroll(ctx, "alice", utterance, "open sesame")
		assert.ErrorIs(t, err, errBoom)
		assert.NotErrorIs(t, err, ErrCollaborator)
	})
}
