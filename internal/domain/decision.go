package domain

// Reason classifies why the gate reached a decision.
type Reason string

const (
	ReasonGranted            Reason = "Granted"
	ReasonEnrolled           Reason = "Enrolled"
	ReasonUserNotFound       Reason = "UserNotFound"
	ReasonPassphraseMismatch Reason = "PassphraseMismatch"
	ReasonVoiceMismatch      Reason = "VoiceMismatch"
	ReasonTooManyAttempts    Reason = "TooManyAttempts"
	ReasonInvalidInput       Reason = "InvalidInput"
)

// Decision is the result of an authentication attempt.
type Decision struct {
	Granted bool   `json:"granted"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
	// Similarity and Threshold are set only when the biometric check ran.
	Similarity *float64 `json:"similarity,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// Outcome maps the decision onto its audit verdict.
func (d Decision) Outcome() Outcome {
	if d.Granted {
		return OutcomeGranted
	}
	return OutcomeDenied
}

// EnrollResult is the result of an enrollment attempt.
type EnrollResult struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}
