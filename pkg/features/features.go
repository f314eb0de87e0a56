// Package features turns a mono waveform into a fixed-length voice feature
// vector.
//
// Two strategies are provided:
//
//   - basic: the mean of short-term features (ZCR, energy, energy entropy,
//     spectral centroid, spread, entropy, flux, rolloff and 13 MFCCs) over
//     50 ms windows with a 25 ms step. 21 dimensions.
//   - enhanced: peak normalization and DC removal, band-limiting to the speech
//     band, silence trimming, then MFCC means and standard deviations plus
//     spectral summaries. 43 dimensions.
//
// The two strategies produce vectors of different length. Profiles enrolled
// under one strategy remain comparable under the other through zero-padding in
// package voiceprint, though the resulting scores are not meaningful.
package features

import (
	"errors"
	"fmt"
)

// Strategy names a feature extraction pipeline.
type Strategy string

const (
	StrategyBasic    Strategy = "basic"
	StrategyEnhanced Strategy = "enhanced"
)

var (
	// ErrTooShort is returned when the input does not fill a single analysis frame.
	ErrTooShort = errors.New("features: audio shorter than one analysis frame")
	// ErrSilent is returned when no voiced audio remains after preprocessing.
	ErrSilent = errors.New("features: no voiced audio")
	// ErrSampleRate is returned for a non-positive sample rate.
	ErrSampleRate = errors.New("features: invalid sample rate")
)

// Extractor computes a feature vector from mono samples in [-1, 1].
// Implementations are stateless and safe for concurrent use.
type Extractor interface {
	Extract(samples []float32, sampleRate int) ([]float64, error)
	// Dimension is the length of every vector returned by Extract.
	Dimension() int
}

// New returns the extractor for the given strategy. An empty strategy selects basic.
func New(s Strategy) (Extractor, error) {
	switch s {
	case StrategyBasic, "":
		return Basic{}, nil
	case StrategyEnhanced:
		return NewEnhanced(), nil
	default:
		return nil, fmt.Errorf("features: unknown strategy %q (supported: basic, enhanced)", s)
	}
}
