package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Enhanced is the normalized, band-limited, silence-trimmed MFCC pipeline.
type Enhanced struct {
	// LowHz and HighHz bound the analysed band. HighHz is capped at Nyquist.
	LowHz, HighHz float64
	// SilenceRatio is the frame RMS, relative to the loudest frame, below which
	// leading and trailing frames are trimmed.
	SilenceRatio float64
	// Window and Step are the analysis frame length and hop in seconds.
	Window, Step float64
	NumMFCC      int
	NumMels      int
}

// NewEnhanced returns the pipeline with its default parameters.
func NewEnhanced() Enhanced {
	return Enhanced{
		LowHz:        80,
		HighHz:       7600,
		SilenceRatio: 0.1,
		Window:       0.025,
		Step:         0.010,
		NumMFCC:      20,
		NumMels:      40,
	}
}

// Dimension implements Extractor.
func (e Enhanced) Dimension() int { return 2*e.NumMFCC + 3 }

// Extract implements Extractor.
func (e Enhanced) Extract(samples []float32, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrSampleRate
	}
	win := int(e.Window * float64(sampleRate))
	step := int(e.Step * float64(sampleRate))
	if win < 2 || step < 1 {
		return nil, ErrSampleRate
	}

	x, err := normalize(samples)
	if err != nil {
		return nil, err
	}

	fr := newFramer(win, step, sampleRate)
	n := fr.count(len(x))
	if n == 0 {
		return nil, ErrTooShort
	}

	first, last := voicedSpan(x, fr, n, e.SilenceRatio)

	high := math.Min(e.HighHz, float64(sampleRate)/2)
	low := math.Min(e.LowHz, high)
	ceps := newCepstrum(e.NumMels, e.NumMFCC, win, sampleRate, low, high)
	loBin, hiBin := bandBins(fr, low, high)

	frames := last - first + 1
	mfcc := make([][]float64, e.NumMFCC)
	for j := range mfcc {
		mfcc[j] = make([]float64, 0, frames)
	}
	var centroidSum, rolloffSum, zcrSum float64

	for i := first; i <= last; i++ {
		frame := fr.frame(x, i)
		mag := fr.magnitude(frame)
		band := mag[loBin : hiBin+1]

		for j, c := range ceps.coefficients(mag) {
			mfcc[j] = append(mfcc[j], c)
		}
		c, _ := centroidSpread(band)
		centroidSum += c
		rolloffSum += rolloff(band, 0.85)
		zcrSum += zeroCrossingRate(frame)
	}

	out := make([]float64, 0, e.Dimension())
	for _, series := range mfcc {
		out = append(out, stat.Mean(series, nil))
	}
	for _, series := range mfcc {
		if len(series) < 2 {
			out = append(out, 0)
			continue
		}
		out = append(out, stat.StdDev(series, nil))
	}
	f := float64(frames)
	out = append(out, centroidSum/f, rolloffSum/f, zcrSum/f)
	return out, nil
}

// normalize removes the DC offset and scales the peak to 1.
func normalize(samples []float32) ([]float64, error) {
	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	if len(x) == 0 {
		return nil, ErrTooShort
	}
	mean := stat.Mean(x, nil)
	floats.AddConst(-mean, x)

	peak := math.Max(floats.Max(x), -floats.Min(x))
	if peak < eps {
		return nil, ErrSilent
	}
	floats.Scale(1/peak, x)
	return x, nil
}

// voicedSpan returns the first and last frame whose RMS reaches ratio of the
// loudest frame. Normalized input always has at least one such frame.
func voicedSpan(x []float64, fr *framer, n int, ratio float64) (int, int) {
	rms := make([]float64, n)
	for i := range n {
		rms[i] = math.Sqrt(energy(fr.frame(x, i)))
	}
	threshold := ratio * floats.Max(rms)

	first, last := 0, n-1
	for first < last && rms[first] < threshold {
		first++
	}
	for last > first && rms[last] < threshold {
		last--
	}
	return first, last
}

// bandBins maps a frequency band onto inclusive FFT bin indices.
func bandBins(fr *framer, low, high float64) (int, int) {
	bins := fr.win/2 + 1
	lo, hi := 0, bins-1
	for lo < bins-1 && fr.binHz(lo) < low {
		lo++
	}
	for hi > lo && fr.binHz(hi) > high {
		hi--
	}
	return lo, hi
}
