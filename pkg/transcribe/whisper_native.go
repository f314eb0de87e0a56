//go:build whisper

package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

// Compile-time assertion that WhisperNative satisfies Transcriber.
var _ Transcriber = (*WhisperNative)(nil)

// WhisperNative runs whisper.cpp in-process through its CGO bindings. The model
// is loaded once and shared; every call gets its own inference context.
type WhisperNative struct {
	model    whisperlib.Model
	language string
}

// NewWhisperNative loads the ggml model at modelPath. The caller must Close it.
func NewWhisperNative(modelPath, language string) (Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("transcribe: whisper model path must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	if language == "" {
		language = defaultLanguage
	}
	return &WhisperNative{model: model, language: language}, nil
}

// Transcribe implements Transcriber. whisper.cpp only accepts 16 kHz input.
func (w *WhisperNative) Transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if wf.SampleRate != whisperlib.SampleRate {
		return "", fmt.Errorf("%w: whisper needs %d Hz, got %d Hz", audio.ErrSampleRateMismatch, whisperlib.SampleRate, wf.SampleRate)
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("transcribe: create whisper context: %w", err)
	}
	if err := wctx.SetLanguage(w.language); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", w.language, "err", err)
	}
	if err := wctx.Process(wf.Samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("transcribe: whisper process: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("transcribe: read whisper segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the model.
func (w *WhisperNative) Close() error {
	return w.model.Close()
}
