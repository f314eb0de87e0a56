//go:build !whisper

package transcribe

import "errors"

// NewWhisperNative is unavailable in builds without the "whisper" tag.
func NewWhisperNative(_, _ string) (Transcriber, error) {
	return nil, errors.New("transcribe: whisper-native requires building with -tags whisper")
}
