package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const bitsPerSample = 16

var (
	// ErrNotWAV is returned when the input lacks a RIFF/WAVE header.
	ErrNotWAV = errors.New("audio: not a RIFF/WAVE stream")
	// ErrUnsupportedFormat is returned for anything other than 16-bit integer PCM.
	ErrUnsupportedFormat = errors.New("audio: only 16-bit PCM WAV is supported")
)

// DecodeWAV reads a 16-bit PCM WAV stream. Multi-channel input is down-mixed
// to mono by averaging channels.
func DecodeWAV(r io.Reader) (Waveform, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Waveform{}, fmt.Errorf("audio: read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Waveform{}, ErrNotWAV
	}

	var (
		channels   int
		sampleRate int
		pcm        []byte
		haveFmt    bool
	)

	// Walk the chunk list; fmt must precede data but other chunks may sit anywhere.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(data) {
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return Waveform{}, fmt.Errorf("%w: short fmt chunk (%d bytes)", ErrNotWAV, end-body)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			// 0xFFFE is WAVE_FORMAT_EXTENSIBLE, which recorders use for plain PCM too.
			if (format != 1 && format != 0xFFFE) || bits != bitsPerSample {
				return Waveform{}, fmt.Errorf("%w (format=%d bits=%d)", ErrUnsupportedFormat, format, bits)
			}
			haveFmt = true
		case "data":
			pcm = data[body:end]
		}

		// Chunks are word aligned.
		pos = body + size + size%2
	}

	if !haveFmt {
		return Waveform{}, fmt.Errorf("%w: no fmt chunk", ErrNotWAV)
	}
	if pcm == nil {
		return Waveform{}, fmt.Errorf("%w: no data chunk", ErrNotWAV)
	}
	if channels <= 0 || sampleRate <= 0 {
		return Waveform{}, fmt.Errorf("%w: invalid header (channels=%d rate=%d)", ErrNotWAV, channels, sampleRate)
	}

	return Waveform{Samples: downmix(PCM16ToFloat32(pcm), channels), SampleRate: sampleRate}, nil
}

// EncodeWAV wraps the waveform in a mono 16-bit PCM RIFF/WAV container.
func EncodeWAV(w Waveform) []byte {
	pcm := Float32ToPCM16(w.Samples)
	const channels = 1
	byteRate := w.SampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(w.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func downmix(interleaved []float32, channels int) []float32 {
	if channels == 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
