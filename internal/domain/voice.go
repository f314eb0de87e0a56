package domain

import (
	"context"
	"time"

	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// Transcriber turns speech into text. Implementations live in pkg/transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, w audio.Waveform) (string, error)
}

// FeatureExtractor turns a waveform into a voice feature vector.
// Implementations live in pkg/features.
type FeatureExtractor interface {
	Extract(samples []float32, sampleRate int) ([]float64, error)
}

// AudioCapture records a fixed-duration mono utterance. Record blocks until the
// buffer is full; ctx is the extension point for cancelling a capture.
type AudioCapture interface {
	Record(ctx context.Context, d time.Duration, sampleRate int) (audio.Waveform, error)
}
