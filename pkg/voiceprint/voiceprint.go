// Package voiceprint scores the similarity of two voice feature vectors and
// derives the per-profile acceptance threshold.
//
// Vectors produced by different feature strategies may differ in length. Score
// reconciles them by zero-padding the shorter vector on the right, so a profile
// enrolled under an older strategy can still be compared (with a degraded score)
// instead of failing.
package voiceprint

import (
	"gonum.org/v1/gonum/floats"
)

// Score returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length are zero-padded to the longer length.
// The score is 0 when either vector has zero norm.
func Score(a, b []float64) float64 {
	a, b = Pad(a, b)

	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	// Identical vectors score exactly 1; the quotient below can round to 1-ε.
	if floats.Equal(a, b) {
		return 1
	}

	sim := floats.Dot(a, b) / (na * nb)
	// Rounding can push |sim| a hair past 1 for parallel vectors.
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// Pad returns a and b extended with trailing zeros to a common length.
// Inputs are never truncated and never modified in place.
func Pad(a, b []float64) ([]float64, []float64) {
	switch {
	case len(a) < len(b):
		a = padTo(a, len(b))
	case len(b) < len(a):
		b = padTo(b, len(a))
	}
	return a, b
}

func padTo(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}
