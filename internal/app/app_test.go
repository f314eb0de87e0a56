package app

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeAphrody/vocalgate/internal/config"
	"github.com/FilipeAphrody/vocalgate/internal/repository"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
	"github.com/FilipeAphrody/vocalgate/pkg/features"
)

type scriptedTranscriber struct{ text string }

func (s *scriptedTranscriber) Transcribe(context.Context, audio.Waveform) (string, error) {
	return s.text, nil
}

func (s *scriptedTranscriber) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:                 "0",
		LogLevel:             "info",
		ProfileStore:         "json",
		ProfileStorePath:     filepath.Join(dir, "voice_profiles.json"),
		ProfileStoreRecovery: "strict",
		AuditLog:             "file",
		AuditLogPath:         filepath.Join(dir, "access_log.txt"),
		SampleRate:           16000,
		RecordSeconds:        1,
		BaseThreshold:        0.8,
		AdaptiveThreshold:    true,
		MaxAttempts:          3,
		Cooldown:             time.Minute,
		TextMatchStrategy:    "subset",
		FeatureStrategy:      "enhanced",
		Transcriber:          "whisper-http",
		WhisperURL:           "http://127.0.0.1:1",
		JWTSecret:            "test-secret",
		SessionTTL:           time.Minute,
		RefreshTTL:           time.Hour,
		OperatorUsername:     "operator",
	}
}

func TestNewWiresConfiguredComponents(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &repository.JSONProfileRepo{}, a.Profiles)
	assert.IsType(t, &repository.FileAuditRepo{}, a.AuditLog)
	assert.IsType(t, features.Enhanced{}, a.Extractor)
	assert.Equal(t, time.Second, a.Recorder.Duration())
}

func TestNewBadgerStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProfileStore = "badger"
	cfg.ProfileStorePath = t.TempDir()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &repository.BadgerProfileRepo{}, a.Profiles)
	require.NoError(t, a.Close())
}

func TestAppEnrollAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	tr := &scriptedTranscriber{text: "open sesame"}
	a, err := New(ctx, testConfig(t), WithTranscriber(tr))
	require.NoError(t, err)
	defer a.Close()

	voice := harmonic(160, 16000)
	res, err := a.Enroll.Enroll(ctx, "alice", voice, "open sesame")
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)

	tr.text = "please open sesame now"
	d, err := a.Gate.Authenticate(ctx, "alice", voice)
	require.NoError(t, err)
	assert.True(t, d.Granted, d.Message)

	recs, err := a.Audit.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].Username)

	users, err := a.Enroll.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, users)
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.FeatureStrategy = "neural"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

// harmonic returns one second of a voiced tone with silent edges.
func harmonic(f0 float64, rate int) audio.Waveform {
	samples := make([]float32, rate)
	for i := rate / 5; i < rate-rate/5; i++ {
		t := float64(i) / float64(rate)
		samples[i] = float32(0.4*math.Sin(2*math.Pi*f0*t) + 0.2*math.Sin(4*math.Pi*f0*t))
	}
	return audio.Waveform{Samples: samples, SampleRate: rate}
}

func TestRedisOptions(t *testing.T) {
	assert.Equal(t, "localhost:6379", redisOptions("localhost:6379").Addr)

	opt := redisOptions("redis://:pw@cache:6380/2")
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}
