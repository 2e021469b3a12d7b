package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and by directory unit wiring.
// It mirrors the Postgres store's expiry discipline: entries lapse the moment
// the clock passes their expires_at, independent of any sweep.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	records map[string]SpecialistRecord
	secrets map[string]memorySecret
}

type memorySecret struct {
	token     string
	expiresAt time.Time
}

// NewMemory creates a Memory store using the real clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates a Memory store with an injected clock, so tests
// can simulate TTL lapse without sleeping.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:     now,
		records: make(map[string]SpecialistRecord),
		secrets: make(map[string]memorySecret),
	}
}

// PutSpecialist upserts record and secret under one lock.
func (m *Memory) PutSpecialist(_ context.Context, rec SpecialistRecord, secret string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ExpiresAt = m.now().Add(ttl)
	m.records[rec.AgentID] = rec
	m.secrets[rec.AgentID] = memorySecret{token: secret, expiresAt: rec.ExpiresAt}
	return nil
}

// DeleteSpecialist removes both entries together.
func (m *Memory) DeleteSpecialist(_ context.Context, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[agentID]
	live := ok && rec.ExpiresAt.After(m.now())
	delete(m.records, agentID)
	delete(m.secrets, agentID)
	if !live {
		return ErrNotFound
	}
	return nil
}

// ListRecords returns live records ordered by agent id.
func (m *Memory) ListRecords(_ context.Context) ([]SpecialistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var records []SpecialistRecord
	for _, rec := range m.records {
		if rec.ExpiresAt.After(now) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AgentID < records[j].AgentID })
	return records, nil
}

// GetSecret returns the live secret for an agent id.
func (m *Memory) GetSecret(_ context.Context, agentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sec, ok := m.secrets[agentID]
	if !ok || !sec.expiresAt.After(m.now()) {
		return "", ErrNotFound
	}
	return sec.token, nil
}

// SweepExpired drops lapsed entries from both maps.
func (m *Memory) SweepExpired(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var purged []string
	for id, rec := range m.records {
		if !rec.ExpiresAt.After(now) {
			delete(m.records, id)
			delete(m.secrets, id)
			purged = append(purged, id)
		}
	}
	for id, sec := range m.secrets {
		if !sec.expiresAt.After(now) {
			delete(m.secrets, id)
		}
	}
	sort.Strings(purged)
	return purged, nil
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(context.Context) error {
	return nil
}
