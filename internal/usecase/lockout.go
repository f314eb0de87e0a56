package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

const (
	DefaultMaxAttempts = 3
	DefaultCooldown    = 5 * time.Minute
)

// Authenticator is the check a LockoutController guards. *AuthEngine implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, username string, w audio.Waveform) (domain.Decision, error)
}

// LockoutState is a snapshot of the controller.
type LockoutState struct {
	Attempts    int
	LastAttempt time.Time
	Locked      bool
}

// LockoutController guards an Authenticator with a process-wide attempt
// counter. After MaxAttempts consecutive denials every request is refused with
// TooManyAttempts, without touching the engine, until Cooldown has passed since
// the last denial. The counter is shared by all callers and all usernames.
//
// One mutex covers the whole attempt (check, evaluate, transition), so
// concurrent requests are evaluated one at a time.
type LockoutController struct {
	engine      Authenticator
	audit       domain.AuditRepository
	maxAttempts int
	cooldown    time.Duration
	now         func() time.Time
	metrics     *observe.Metrics

	mu          sync.Mutex
	attempts    int
	lastAttempt time.Time
}

// LockoutOption configures a LockoutController.
type LockoutOption func(*LockoutController)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) LockoutOption {
	return func(c *LockoutController) { c.now = now }
}

// WithLockoutMetrics attaches metric instruments.
func WithLockoutMetrics(m *observe.Metrics) LockoutOption {
	return func(c *LockoutController) { c.metrics = m }
}

// NewLockoutController creates a controller. Non-positive limits fall back to
// 3 attempts and a 5 minute cooldown.
func NewLockoutController(engine Authenticator, audit domain.AuditRepository, maxAttempts int, cooldown time.Duration, opts ...LockoutOption) *LockoutController {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	c := &LockoutController{
		engine:      engine,
		audit:       audit,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Authenticate evaluates one attempt and records the outcome in the audit log.
// Errors from the engine are returned untouched; they neither count as an
// attempt nor produce an audit record.
func (c *LockoutController) Authenticate(ctx context.Context, username string, w audio.Waveform) (domain.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.attempts >= c.maxAttempts {
		if now.Sub(c.lastAttempt) < c.cooldown {
			d := deny(domain.ReasonTooManyAttempts, "Too many attempts. Please wait.")
			c.record(ctx, "", d, now)
			return d, nil
		}
		// Cooldown elapsed; this request is evaluated normally.
		c.attempts = 0
	}

	d, err := c.engine.Authenticate(ctx, username, w)
	if err != nil {
		return domain.Decision{}, err
	}

	if d.Granted {
		c.attempts = 0
	} else {
		c.attempts++
		c.lastAttempt = now
		if c.attempts == c.maxAttempts {
			c.metrics.RecordLockout(ctx)
			slog.Warn("gate locked", "attempts", c.attempts, "cooldown", c.cooldown)
		}
	}

	c.record(ctx, username, d, now)
	return d, nil
}

// State returns a snapshot of the counter.
func (c *LockoutController) State() LockoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LockoutState{
		Attempts:    c.attempts,
		LastAttempt: c.lastAttempt,
		Locked:      c.attempts >= c.maxAttempts && c.now().Sub(c.lastAttempt) < c.cooldown,
	}
}

// record writes the audit entry. A failed write is logged and otherwise ignored.
func (c *LockoutController) record(ctx context.Context, username string, d domain.Decision, at time.Time) {
	c.metrics.RecordDecision(ctx, string(d.Outcome()), string(d.Reason))

	rec := domain.AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: at,
		Outcome:   d.Outcome(),
		Username:  username,
		Reason:    d.Reason,
	}
	if err := c.audit.Record(ctx, rec); err != nil {
		slog.Warn("failed to write audit record", "outcome", rec.Outcome, "reason", rec.Reason, "err", err)
	}
}
