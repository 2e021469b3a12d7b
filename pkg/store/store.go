// Package store persists specialist records and secrets with per-entry expiry.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a specialist id has no live entry.
var ErrNotFound = errors.New("specialist not found")

// ToolDescriptor describes one capability a specialist offers.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// SpecialistRecord is the public half of a specialist's directory entry.
// The secret lives in a disjoint namespace and is never part of this struct.
type SpecialistRecord struct {
	AgentID   string           `json:"agent_id"`
	BaseURL   string           `json:"base_url"`
	Version   string           `json:"version,omitempty"`
	Tools     []ToolDescriptor `json:"tools"`
	ExpiresAt time.Time        `json:"-"`
}

// Store is the directory's persistence layer: two expiring tables keyed by
// specialist id. Record and secret for one id are written and deleted together;
// reads never return entries whose TTL has lapsed.
type Store interface {
	// PutSpecialist upserts the public record and the secret in one atomic
	// write and resets both expiries to now+ttl.
	PutSpecialist(ctx context.Context, rec SpecialistRecord, secret string, ttl time.Duration) error

	// DeleteSpecialist removes the record and the secret together.
	// Returns ErrNotFound when no live record exists for the id.
	DeleteSpecialist(ctx context.Context, agentID string) error

	// ListRecords returns all live public records, ordered by agent id.
	ListRecords(ctx context.Context) ([]SpecialistRecord, error)

	// GetSecret returns the live secret for a specialist id, or ErrNotFound.
	GetSecret(ctx context.Context, agentID string) (string, error)

	// SweepExpired deletes lapsed rows from both tables and returns the
	// specialist ids that were purged. Reads already filter lapsed entries,
	// so this is housekeeping, not a correctness requirement.
	SweepExpired(ctx context.Context) ([]string, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error
}
