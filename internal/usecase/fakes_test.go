package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
	"github.com/FilipeAphrody/vocalgate/pkg/audio"
)

var errBoom = errors.New("boom")

// utterance is a placeholder waveform; the fakes ignore its content.
var utterance = audio.Waveform{Samples: make([]float32, 160), SampleRate: 16000}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, audio.Waveform) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeExtractor struct {
	vec   []float64
	err   error
	calls int
}

func (f *fakeExtractor) Extract([]float32, int) ([]float64, error) {
	f.calls++
	return slices.Clone(f.vec), f.err
}

type memProfiles struct {
	mu   sync.Mutex
	data map[string]domain.UserProfile
	err  error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{data: map[string]domain.UserProfile{}}
}

func (m *memProfiles) Get(_ context.Context, username string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.data[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memProfiles) Upsert(_ context.Context, p *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[p.Username] = *p
	return nil
}

func (m *memProfiles) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

func (m *memProfiles) Close() error { return nil }

type memAudit struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	err     error
}

func (m *memAudit) Record(_ context.Context, rec domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memAudit) Recent(_ context.Context, n int) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.records) {
		n = len(m.records)
	}
	return slices.Clone(m.records[len(m.records)-n:]), nil
}

func (m *memAudit) Close() error { return nil }

func (m *memAudit) outcomes() []domain.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Outcome, len(m.records))
	for i, r := range m.records {
		out[i] = r.Outcome
	}
	return out
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokens() *memTokens { return &memTokens{tokens: map[string]string{}} }

func (m *memTokens) StoreRefreshToken(_ context.Context, username, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = username
	return nil
}

func (m *memTokens) GetUsernameByRefreshToken(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.tokens[token]
	if !ok {
		return "", domain.ErrRefreshTokenInvalid
	}
	return u, nil
}

func (m *memTokens) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
