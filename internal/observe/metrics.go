// Package observe holds the gate's OpenTelemetry metric instruments and the
// provider setup that exposes them to Prometheus.
//
// Usecases accept a *Metrics; a nil *Metrics is valid and records nothing, so
// tests and the CLI can skip metrics entirely.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/FilipeAphrody/vocalgate"

// Stage names for StageDuration.
const (
	StageTranscribe = "transcribe"
	StageExtract    = "extract"
	StageCapture    = "capture"
)

// Metrics holds all metric instruments for the gate.
type Metrics struct {
	// Decisions counts authentication decisions. Attributes: outcome, reason.
	Decisions metric.Int64Counter

	// Enrollments counts enrollment attempts. Attribute: status.
	Enrollments metric.Int64Counter

	// Lockouts counts transitions from open to locked.
	Lockouts metric.Int64Counter

	// StageDuration tracks collaborator latency. Attribute: stage.
	StageDuration metric.Float64Histogram
}

// latencyBuckets are in seconds. Transcription of a 5 s utterance on CPU
// lands in the upper half.
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Decisions, err = m.Int64Counter("vocalgate.decisions",
		metric.WithDescription("Authentication decisions by outcome and reason."),
	); err != nil {
		return nil, err
	}
	if met.Enrollments, err = m.Int64Counter("vocalgate.enrollments",
		metric.WithDescription("Enrollment attempts by status."),
	); err != nil {
		return nil, err
	}
	if met.Lockouts, err = m.Int64Counter("vocalgate.lockouts",
		metric.WithDescription("Number of times the gate entered the locked state."),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("vocalgate.stage.duration",
		metric.WithDescription("Latency of transcription, feature extraction and capture."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordDecision counts one authentication decision.
func (m *Metrics) RecordDecision(ctx context.Context, outcome, reason string) {
	if m == nil {
		return
	}
	m.Decisions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("reason", reason),
		),
	)
}

// RecordEnrollment counts one enrollment attempt.
func (m *Metrics) RecordEnrollment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.Enrollments.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordLockout counts one open-to-locked transition.
func (m *Metrics) RecordLockout(ctx context.Context) {
	if m == nil {
		return
	}
	m.Lockouts.Add(ctx, 1)
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(ctx context.Context, stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}
