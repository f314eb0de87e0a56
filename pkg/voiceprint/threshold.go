package voiceprint

const (
	// StrongSignalNorm is the feature norm above which a profile is treated as a
	// strong, distinguishable voiceprint.
	StrongSignalNorm = 10.0

	lenientFactor = 0.9
	strictFactor  = 1.1
)

// ThresholdPolicy derives the similarity a probe must reach to match a profile.
//
// The adaptive rule is a heuristic, not a calibrated decision threshold: a large
// feature norm relaxes the bar by 10%, anything else tightens it by 10%. Because
// the norm of a stored vector says nothing about who produced it, an attacker
// able to write a scaled vector into the store can lower the bar for that
// profile.
type ThresholdPolicy struct {
	Base     float64
	Adaptive bool
}

// Threshold returns the acceptance threshold for a stored voiceprint.
// A nil vector means the profile could not be read and yields the base threshold.
func (p ThresholdPolicy) Threshold(stored []float64) float64 {
	return Threshold(stored, p.Adaptive, p.Base)
}

// Threshold is the functional form of ThresholdPolicy.Threshold.
func Threshold(stored []float64, adaptive bool, base float64) float64 {
	if !adaptive || stored == nil {
		return base
	}
	if Norm(stored) > StrongSignalNorm {
		return base * lenientFactor
	}
	return base * strictFactor
}
