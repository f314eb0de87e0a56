// Package audio holds the mono waveform type shared by capture, transcription
// and feature extraction, plus WAV and raw PCM helpers.
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// DefaultSampleRate is the capture rate used for enrollment and authentication.
const DefaultSampleRate = 16000

// DefaultDuration is how long one utterance is recorded.
const DefaultDuration = 5 * time.Second

// Waveform is a mono recording with samples normalized to [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the recording.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// Float64 returns a float64 copy of the samples for numeric processing.
func (w Waveform) Float64() []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = float64(s)
	}
	return out
}

// FixedLength returns a copy of w holding exactly n samples, zero-padded or
// truncated at the end.
func (w Waveform) FixedLength(n int) Waveform {
	out := make([]float32, n)
	copy(out, w.Samples)
	return Waveform{Samples: out, SampleRate: w.SampleRate}
}

// SampleCount returns how many samples d of audio at rate contains.
func SampleCount(d time.Duration, rate int) int {
	return int(d.Seconds() * float64(rate))
}

// PCM16ToFloat32 converts 16-bit signed little-endian PCM to float32 samples in
// [-1, 1]. A trailing odd byte is ignored.
func PCM16ToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}
	return samples
}

// Float32ToPCM16 converts samples to 16-bit signed little-endian PCM, clipping
// values outside [-1, 1].
func Float32ToPCM16(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(math.Round(v*32767))))
	}
	return pcm
}
