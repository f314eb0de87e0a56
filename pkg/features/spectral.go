package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const eps = 1e-10

// framer splits a signal into overlapping, Hamming-windowed frames and computes
// their magnitude spectra. It reuses one FFT plan, so it is not safe for
// concurrent use; extractors build one per call.
type framer struct {
	win, step  int
	sampleRate int
	window     []float64
	fft        *fourier.FFT
	buf        []float64
	coeffs     []complex128
}

func newFramer(win, step, sampleRate int) *framer {
	return &framer{
		win:        win,
		step:       step,
		sampleRate: sampleRate,
		window:     hamming(win),
		fft:        fourier.NewFFT(win),
		buf:        make([]float64, win),
	}
}

// count returns the number of complete frames in n samples.
func (f *framer) count(n int) int {
	if n < f.win {
		return 0
	}
	return (n-f.win)/f.step + 1
}

// frame returns the raw (unwindowed) samples of frame i.
func (f *framer) frame(x []float64, i int) []float64 {
	off := i * f.step
	return x[off : off+f.win]
}

// magnitude returns |X[k]| for k in [0, win/2] of the windowed frame.
func (f *framer) magnitude(frame []float64) []float64 {
	for i, v := range frame {
		f.buf[i] = v * f.window[i]
	}
	f.coeffs = f.fft.Coefficients(f.coeffs, f.buf)
	mag := make([]float64, len(f.coeffs))
	for k, c := range f.coeffs {
		mag[k] = cmplx.Abs(c)
	}
	return mag
}

// binHz returns the centre frequency of FFT bin k.
func (f *framer) binHz(k int) float64 {
	return float64(k) * float64(f.sampleRate) / float64(f.win)
}

func hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func hzToMel(hz float64) float64 { return 2595.0 * math.Log10(1.0+hz/700.0) }

func melToHz(mel float64) float64 { return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0) }

// melFilterbank builds triangular filters spaced evenly on the mel scale
// between lowHz and highHz. Bins outside the band get zero weight in every
// filter, which is what band-limits the MFCCs.
func melFilterbank(numMels, nfft, sampleRate int, lowHz, highHz float64) [][]float64 {
	bins := nfft/2 + 1
	melLow, melHigh := hzToMel(lowHz), hzToMel(highHz)

	edges := make([]int, numMels+2)
	for i := range edges {
		hz := melToHz(melLow + float64(i)*(melHigh-melLow)/float64(numMels+1))
		edges[i] = min(int(math.Floor(hz*float64(nfft)/float64(sampleRate))), bins-1)
	}

	fb := make([][]float64, numMels)
	for m := range numMels {
		fb[m] = make([]float64, bins)
		left, center, right := edges[m], edges[m+1], edges[m+2]
		for k := left; k <= center; k++ {
			if center > left {
				fb[m][k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right; k++ {
			if right > center {
				fb[m][k] = float64(right-k) / float64(right-center)
			}
		}
	}
	return fb
}

// cepstrum computes MFCCs from a magnitude spectrum.
type cepstrum struct {
	filters [][]float64
	dct     *fourier.DCT
	logMel  []float64
	out     []float64
	n       int
}

func newCepstrum(numMels, numCoeffs, nfft, sampleRate int, lowHz, highHz float64) *cepstrum {
	return &cepstrum{
		filters: melFilterbank(numMels, nfft, sampleRate, lowHz, highHz),
		dct:     fourier.NewDCT(numMels),
		logMel:  make([]float64, numMels),
		out:     make([]float64, numMels),
		n:       numCoeffs,
	}
}

// coefficients returns the first n MFCCs of mag. The result is a fresh slice.
func (c *cepstrum) coefficients(mag []float64) []float64 {
	power := make([]float64, len(mag))
	floats.MulTo(power, mag, mag)
	for m, w := range c.filters {
		c.logMel[m] = math.Log(math.Max(floats.Dot(w, power), eps))
	}
	c.out = c.dct.Transform(c.out, c.logMel)
	return append([]float64(nil), c.out[:c.n]...)
}

func zeroCrossingRate(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(x); i++ {
		if (x[i] >= 0) != (x[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(x)-1)
}

func energy(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Dot(x, x) / float64(len(x))
}

// blockEntropy is the Shannon entropy (bits) of the energy distribution of x
// over n equal blocks.
func blockEntropy(x []float64, n int, squared bool) float64 {
	size := len(x) / n
	if size == 0 {
		return 0
	}
	blocks := make([]float64, n)
	for b := range n {
		seg := x[b*size : (b+1)*size]
		if squared {
			blocks[b] = floats.Dot(seg, seg)
		} else {
			blocks[b] = floats.Sum(seg)
		}
	}
	total := floats.Sum(blocks) + eps
	var h float64
	for _, e := range blocks {
		p := e / total
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// centroidSpread returns the spectral centroid and spread of mag as fractions of
// the spectrum width.
func centroidSpread(mag []float64) (float64, float64) {
	total := floats.Sum(mag) + eps
	var c float64
	for k, m := range mag {
		c += float64(k) * m
	}
	c /= total
	var s float64
	for k, m := range mag {
		d := float64(k) - c
		s += d * d * m
	}
	s = math.Sqrt(s / total)
	width := float64(len(mag))
	return c / width, s / width
}

// rolloff returns the fraction of the spectrum below which ratio of the energy lies.
func rolloff(mag []float64, ratio float64) float64 {
	power := make([]float64, len(mag))
	floats.MulTo(power, mag, mag)
	target := ratio * floats.Sum(power)
	var acc float64
	for k, p := range power {
		acc += p
		if acc >= target && acc > 0 {
			return float64(k) / float64(len(mag))
		}
	}
	return 0
}

// flux is the squared distance between two sum-normalized spectra.
func flux(cur, prev []float64) float64 {
	if prev == nil {
		return 0
	}
	sc := floats.Sum(cur) + eps
	sp := floats.Sum(prev) + eps
	var f float64
	for k := range cur {
		d := cur[k]/sc - prev[k]/sp
		f += d * d
	}
	return f
}
