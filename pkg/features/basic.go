package features

const (
	basicWindow    = 0.050 // seconds
	basicStep      = 0.025 // seconds
	basicMFCC      = 13
	basicMels      = 26
	basicBlocks    = 10
	basicRolloff   = 0.90
	basicDimension = 8 + basicMFCC
)

// Basic is the short-term feature average pipeline.
type Basic struct{}

// Dimension implements Extractor.
func (Basic) Dimension() int { return basicDimension }

// Extract implements Extractor. Silence is not an error here: an all-zero
// input produces a finite vector with zero energy.
func (Basic) Extract(samples []float32, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, ErrSampleRate
	}
	win := int(basicWindow * float64(sampleRate))
	step := int(basicStep * float64(sampleRate))
	if win < 2 || step < 1 {
		return nil, ErrSampleRate
	}
	fr := newFramer(win, step, sampleRate)

	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	n := fr.count(len(x))
	if n == 0 {
		return nil, ErrTooShort
	}

	ceps := newCepstrum(basicMels, basicMFCC, win, sampleRate, 0, float64(sampleRate)/2)
	sum := make([]float64, basicDimension)
	var prev []float64

	for i := range n {
		frame := fr.frame(x, i)
		mag := fr.magnitude(frame)
		centroid, spread := centroidSpread(mag)

		row := []float64{
			zeroCrossingRate(frame),
			energy(frame),
			blockEntropy(frame, basicBlocks, true),
			centroid,
			spread,
			blockEntropy(mag, basicBlocks, true),
			flux(mag, prev),
			rolloff(mag, basicRolloff),
		}
		row = append(row, ceps.coefficients(mag)...)
		for j, v := range row {
			sum[j] += v
		}
		prev = mag
	}

	for j := range sum {
		sum[j] /= float64(n)
	}
	return sum, nil
}
