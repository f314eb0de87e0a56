// Package transcribe provides speech-to-text backends for passphrase checks.
//
// Supported backends:
//   - whisper-http: a whisper.cpp server reached over its /inference endpoint
//   - whisper-native: whisper.cpp linked in-process (requires the "whisper"
//     build tag and libwhisper at link time)
package transcribe

import (
	"context"
	"fmt"

	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// Backend names a transcription implementation.
type Backend string

const (
	BackendWhisperHTTP   Backend = "whisper-http"
	BackendWhisperNative Backend = "whisper-native"
)

// Transcriber converts a mono waveform to text.
type Transcriber interface {
	Transcribe(ctx context.Context, w audio.Waveform) (string, error)
	// Close releases backend resources such as a loaded model.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend   Backend
	ServerURL string
	ModelPath string
	Language  string
	// Retries bounds extra attempts against the whisper server.
	Retries int
}

// New creates a Transcriber for cfg.Backend. An empty backend selects whisper-http.
func New(cfg Config) (Transcriber, error) {
	switch cfg.Backend {
	case BackendWhisperHTTP, "":
		return NewWhisperHTTP(cfg.ServerURL, WithLanguage(cfg.Language), WithRetries(cfg.Retries))
	case BackendWhisperNative:
		return NewWhisperNative(cfg.ModelPath, cfg.Language)
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: whisper-http, whisper-native)", cfg.Backend)
	}
}
