package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

type lockoutFixture struct {
	*engineFixture
	audit *memAudit
	clock *fakeClock
	gate  *LockoutController
}

func newLockoutFixture() *lockoutFixture {
	ef := newEngineFixture(defaultPolicy)
	ef.enroll("alice", "open sesame", []float64{1, 0, 0})
	ef.ex.vec = []float64{1, 0, 0}

	f := &lockoutFixture{
		engineFixture: ef,
		audit:         &memAudit{},
		clock:         &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)},
	}
	f.gate = NewLockoutController(ef.engine, f.audit, 3, 5*time.Minute, WithClock(f.clock.Now))
	return f
}

func (f *lockoutFixture) attempt(t *testing.T, spoken string) domain.Decision {
	t.Helper()
	f.tr.text = spoken
	d, err := f.gate.Authenticate(context.Background(), "alice", utterance)
	require.NoError(t, err)
	return d
}

func TestLockoutLocksAfterMaxAttempts(t *testing.T) {
	f := newLockoutFixture()

	for range 3 {
		d := f.attempt(t, "wrong words")
		assert.Equal(t, domain.ReasonPassphraseMismatch, d.Reason)
		f.clock.Advance(10 * time.Second)
	}
	assert.True(t, f.gate.State().Locked)

	calls := f.tr.calls
	d := f.attempt(t, "open sesame")
	assert.False(t, d.Granted)
	assert.Equal(t, domain.ReasonTooManyAttempts, d.Reason)
	assert.Equal(t, calls, f.tr.calls, "locked gate must not invoke the engine")

	// Cooldown counts from the last evaluated failure.
	f.clock.Advance(5*time.Minute - 20*time.Second)
	assert.Equal(t, domain.ReasonTooManyAttempts, f.attempt(t, "open sesame").Reason)

	f.clock.Advance(10 * time.Second)
	d = f.attempt(t, "open sesame")
	assert.True(t, d.Granted)
	assert.Equal(t, 0, f.gate.State().Attempts)
	assert.False(t, f.gate.State().Locked)

	assert.Equal(t, []domain.Outcome{
		domain.OutcomeDenied, domain.OutcomeDenied, domain.OutcomeDenied,
		domain.OutcomeDenied, domain.OutcomeDenied,
		domain.OutcomeGranted,
	}, f.audit.outcomes())
	assert.Empty(t, f.audit.records[3].Username)
	assert.Equal(t, domain.ReasonTooManyAttempts, f.audit.records[3].Reason)
}

func TestLockoutSuccessResetsCounter(t *testing.T) {
	f := newLockoutFixture()

	f.attempt(t, "wrong")
	f.attempt(t, "wrong")
	assert.Equal(t, 2, f.gate.State().Attempts)

	assert.True(t, f.attempt(t, "open sesame").Granted)
	assert.Equal(t, 0, f.gate.State().Attempts)

	f.attempt(t, "wrong")
	f.attempt(t, "wrong")
	assert.False(t, f.gate.State().Locked)
}

func TestLockoutIsGlobalAcrossUsers(t *testing.T) {
	f := newLockoutFixture()
	ctx := context.Background()

	for _, u := range []string{"x", "y", "z"} {
		d, err := f.gate.Authenticate(ctx, u, utterance)
		require.NoError(t, err)
		assert.Equal(t, domain.ReasonUserNotFound, d.Reason)
	}
	assert.Equal(t, domain.ReasonTooManyAttempts, f.attempt(t, "open sesame").Reason)
}

func TestLockoutCollaboratorErrorIsNotAnAttempt(t *testing.T) {
	f := newLockoutFixture()
	f.tr.err = errBoom

	for range 5 {
		_, err := f.gate.Authenticate(context.Background(), "alice", utterance)
		assert.ErrorIs(t, err, ErrCollaborator)
	}
	assert.Equal(t, 0, f.gate.State().Attempts)
	assert.Empty(t, f.audit.records)
}

func TestLockoutAuditFailureDoesNotChangeDecision(t *testing.T) {
	f := newLockoutFixture()
	f.audit.err = errBoom

	d := f.attempt(t, "open sesame")
	assert.True(t, d.Granted)
}

func TestLockoutConcurrentAttempts(t *testing.T) {
	f := newLockoutFixture()
	f.tr.text = "wrong"
	// The mutex serializes attempts, so the unsynchronized fakes are safe here.
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gate.Authenticate(context.Background(), "alice", utterance)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, f.tr.calls, "at most maxAttempts evaluations before the lock engages")
	assert.Len(t, f.audit.records, 10)
}

func TestNewLockoutControllerDefaults(t *testing.T) {
	c := NewLockoutController(nil, &memAudit{}, 0, 0)
	assert.Equal(t, DefaultMaxAttempts, c.maxAttempts)
	assert.Equal(t, DefaultCooldown, c.cooldown)
}

var _ Authenticator = (*AuthEngine)(nil)

func TestAuditUsecaseLimits(t *testing.T) {
	audit := &memAudit{}
	for range 8 {
		require.NoError(t, audit.Record(context.Background(), domain.AuditRecord{Outcome: domain.OutcomeDenied}))
	}
	u := NewAuditUsecase(audit)

	recs, err := u.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recs, DefaultAuditLimit)

	recs, err = u.Recent(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, recs, 8)
}
