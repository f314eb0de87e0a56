package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// Recorder captures fixed-length utterances at the configured rate.
type Recorder struct {
	duration   time.Duration
	sampleRate int
	metrics    *observe.Metrics
}

// NewRecorder creates a Recorder. Zero values select 5 seconds at 16 kHz.
func NewRecorder(duration time.Duration, sampleRate int, metrics *observe.Metrics) *Recorder {
	if duration <= 0 {
		duration = audio.DefaultDuration
	}
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Recorder{duration: duration, sampleRate: sampleRate, metrics: metrics}
}

// Record blocks until src has delivered a full utterance. Failures are
// wrapped in ErrCollaborator.
func (r *Recorder) Record(ctx context.Context, src domain.AudioCapture) (audio.Waveform, error) {
	start := time.Now()
	defer r.metrics.ObserveStage(ctx, observe.StageCapture, start)

	w, err := src.Record(ctx, r.duration, r.sampleRate)
	if err != nil {
		return audio.Waveform{}, fmt.Errorf("%w: capture: %w", ErrCollaborator, err)
	}
	return w, nil
}

// SampleRate is the rate every captured waveform is recorded at.
func (r *Recorder) SampleRate() int { return r.sampleRate }

// Duration is the length of every captured waveform.
func (r *Recorder) Duration() time.Duration { return r.duration }
