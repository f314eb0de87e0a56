package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ErrSampleRateMismatch is returned when a source cannot deliver the requested rate.
var ErrSampleRateMismatch = errors.New("audio: sample rate mismatch")

// WAVCapture "records" by decoding a WAV stream, such as an HTTP upload. The
// returned waveform always holds exactly duration*rate samples, like a live
// device would.
type WAVCapture struct {
	R io.Reader
}

// Record decodes the stream and fits it to the requested duration.
func (c WAVCapture) Record(ctx context.Context, d time.Duration, rate int) (Waveform, error) {
	if err := ctx.Err(); err != nil {
		return Waveform{}, err
	}
	w, err := DecodeWAV(c.R)
	if err != nil {
		return Waveform{}, err
	}
	if w.SampleRate != rate {
		return Waveform{}, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRateMismatch, w.SampleRate, rate)
	}
	return w.FixedLength(SampleCount(d, rate)), nil
}

// FileCapture is a WAVCapture over a file on disk.
type FileCapture struct {
	Path string
}

// Record reads the file and fits it to the requested duration.
func (c FileCapture) Record(ctx context.Context, d time.Duration, rate int) (Waveform, error) {
	if err := ctx.Err(); err != nil {
		return Waveform{}, err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return Waveform{}, fmt.Errorf("audio: open %q: %w", c.Path, err)
	}
	defer f.Close()

	w, err := WAVCapture{R: f}.Record(ctx, d, rate)
	if err != nil {
		return Waveform{}, fmt.Errorf("audio: %q: %w", c.Path, err)
	}
	return w, nil
}

// StreamCapture records raw 16-bit little-endian mono PCM from a reader, such as
// a recorder piped into stdin. Record blocks until the full duration has been
// read or the stream ends; a stream that ends early is zero-padded.
//
// The context is only checked before the read starts. A blocking read on the
// underlying reader is not interrupted by cancellation.
type StreamCapture struct {
	R io.Reader
}

// Record reads duration*rate samples from the stream.
func (c StreamCapture) Record(ctx context.Context, d time.Duration, rate int) (Waveform, error) {
	if err := ctx.Err(); err != nil {
		return Waveform{}, err
	}
	n := SampleCount(d, rate)
	buf := make([]byte, n*2)
	read, err := io.ReadFull(c.R, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Short recording; the tail stays silent.
	case errors.Is(err, io.EOF):
		return Waveform{}, errors.New("audio: capture stream is empty")
	default:
		return Waveform{}, fmt.Errorf("audio: read capture stream after %d bytes: %w", read, err)
	}
	return Waveform{Samples: PCM16ToFloat32(buf), SampleRate: rate}, nil
}
