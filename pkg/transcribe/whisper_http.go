package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultLanguage   = "en"
	defaultRetryDelay = 200 * time.Millisecond
)

// Compile-time assertion that WhisperHTTP satisfies Transcriber.
var _ Transcriber = (*WhisperHTTP)(nil)

// WhisperHTTP sends each utterance as a WAV upload to a whisper.cpp server.
type WhisperHTTP struct {
	client     *resty.Client
	language   string
	retries    int
	retryDelay time.Duration
}

// Option configures a WhisperHTTP client.
type Option func(*WhisperHTTP)

// WithLanguage sets the recognition language (e.g. "en", "de"). Empty keeps the default.
func WithLanguage(lang string) Option {
	return func(w *WhisperHTTP) {
		if lang != "" {
			w.language = lang
		}
	}
}

// WithTimeout bounds a single inference request.
func WithTimeout(d time.Duration) Option {
	return func(w *WhisperHTTP) { w.client.SetTimeout(d) }
}

// WithRetries retries transport failures and 5xx responses up to n times
// with exponential backoff. Defaults to 0.
func WithRetries(n int) Option {
	return func(w *WhisperHTTP) {
		if n > 0 {
			w.retries = n
		}
	}
}

// WithRetryDelay sets the initial backoff between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(w *WhisperHTTP) {
		if d > 0 {
			w.retryDelay = d
		}
	}
}

// NewWhisperHTTP creates a client for the whisper.cpp server at serverURL.
func NewWhisperHTTP(serverURL string, opts ...Option) (*WhisperHTTP, error) {
	if serverURL == "" {
		return nil, errors.New("transcribe: whisper server URL must not be empty")
	}
	w := &WhisperHTTP{
		client: resty.New().
			SetBaseURL(strings.TrimRight(serverURL, "/")).
			SetTimeout(defaultTimeout),
		language:   defaultLanguage,
		retryDelay: defaultRetryDelay,
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Transcribe implements Transcriber.
func (w *WhisperHTTP) Transcribe(ctx context.Context, wf audio.Waveform) (string, error) {
	if len(wf.Samples) == 0 {
		return "", errors.New("transcribe: empty waveform")
	}
	wav := audio.EncodeWAV(wf)

	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = w.inference(ctx, wav)
			return err
		},
		retry.Attempts(uint(w.retries)+1),
		retry.Delay(w.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	return text, err
}

// inference posts one request. Each attempt gets its own reader over wav.
// Client errors and malformed responses are not retried.
func (w *WhisperHTTP) inference(ctx context.Context, wav []byte) (string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetFileReader("file", "audio.wav", bytes.NewReader(wav)).
		SetFormData(map[string]string{
			"language":        w.language,
			"response_format": "json",
			"temperature":     "0.0",
		}).
		Post("/inference")
	if err != nil {
		return "", fmt.Errorf("transcribe: whisper request: %w", err)
	}
	if resp.IsError() {
		err := fmt.Errorf("transcribe: whisper server returned HTTP %d", resp.StatusCode())
		if resp.StatusCode() < 500 {
			return "", retry.Unrecoverable(err)
		}
		return "", err
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("transcribe: parse whisper response: %w", err))
	}

	// Silence yields an empty transcript, which is a mismatch rather than a failure.
	return strings.TrimSpace(result.Text), nil
}

// Close implements Transcriber. The HTTP client holds no resources worth releasing.
func (w *WhisperHTTP) Close() error { return nil }
