package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgLogPrefix = "store:postgres"

// Postgres implements Store on top of a pgx connection pool. Expiry is
// enforced by the store itself: every read filters on expires_at > now(), so
// a lapsed entry is invisible the instant its TTL passes, whether or not the
// sweep has run.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// PutSpecialist upserts the record and the secret in a single transaction so
// there is no window where one namespace is updated and the other is not.
func (p *Postgres) PutSpecialist(ctx context.Context, rec SpecialistRecord, secret string, ttl time.Duration) error {
	toolsJSON, err := json.Marshal(rec.Tools)
	if err != nil {
		return fmt.Errorf("%s - encode tools for %q: %w", pgLogPrefix, rec.AgentID, err)
	}
	expiresAt := time.Now().UTC().Add(ttl)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s - begin put for %q: %w", pgLogPrefix, rec.AgentID, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO specialist_records (agent_id, base_url, version, tools, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (agent_id) DO UPDATE SET
		   base_url = $2, version = $3, tools = $4, expires_at = $5`,
		rec.AgentID, rec.BaseURL, rec.Version, toolsJSON, expiresAt)
	if err != nil {
		return fmt.Errorf("%s - upsert record for %q: %w", pgLogPrefix, rec.AgentID, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO specialist_secrets (agent_id, secret_token, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (agent_id) DO UPDATE SET
		   secret_token = $2, expires_at = $3`,
		rec.AgentID, secret, expiresAt)
	if err != nil {
		return fmt.Errorf("%s - upsert secret for %q: %w", pgLogPrefix, rec.AgentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s - commit put for %q: %w", pgLogPrefix, rec.AgentID, err)
	}
	return nil
}

// DeleteSpecialist removes both namespaces in one transaction. The secret is
// deleted even when the record row is already gone, so a secret can never
// outlive its record.
func (p *Postgres) DeleteSpecialist(ctx context.Context, agentID string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s - begin delete for %q: %w", pgLogPrefix, agentID, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM specialist_records WHERE agent_id = $1 AND expires_at > now()`, agentID)
	if err != nil {
		return fmt.Errorf("%s - delete record for %q: %w", pgLogPrefix, agentID, err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM specialist_secrets WHERE agent_id = $1`, agentID); err != nil {
		return fmt.Errorf("%s - delete secret for %q: %w", pgLogPrefix, agentID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s - commit delete for %q: %w", pgLogPrefix, agentID, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecords returns live public records only; lapsed rows are filtered by
// the expires_at predicate.
func (p *Postgres) ListRecords(ctx context.Context) ([]SpecialistRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT agent_id, base_url, version, tools, expires_at
		 FROM specialist_records
		 WHERE expires_at > now()
		 ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("%s - list records: %w", pgLogPrefix, err)
	}
	defer rows.Close()

	var records []SpecialistRecord
	for rows.Next() {
		var rec SpecialistRecord
		var toolsJSON []byte
		if err := rows.Scan(&rec.AgentID, &rec.BaseURL, &rec.Version, &toolsJSON, &rec.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s - scan record: %w", pgLogPrefix, err)
		}
		if err := json.Unmarshal(toolsJSON, &rec.Tools); err != nil {
			slog.Warn(fmt.Sprintf("%s - skipping %q: undecodable tools: %v", pgLogPrefix, rec.AgentID, err))
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - list records: %w", pgLogPrefix, err)
	}
	return records, nil
}

// GetSecret returns the live secret for a specialist id.
func (p *Postgres) GetSecret(ctx context.Context, agentID string) (string, error) {
	var secret string
	err := p.pool.QueryRow(ctx,
		`SELECT secret_token FROM specialist_secrets
		 WHERE agent_id = $1 AND expires_at > now()`, agentID).Scan(&secret)
	if err == pgx.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s - get secret for %q: %w", pgLogPrefix, agentID, err)
	}
	return secret, nil
}

// SweepExpired purges lapsed rows from both tables.
func (p *Postgres) SweepExpired(ctx context.Context) ([]string, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s - begin sweep: %w", pgLogPrefix, err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`DELETE FROM specialist_records WHERE expires_at <= now() RETURNING agent_id`)
	if err != nil {
		return nil, fmt.Errorf("%s - sweep records: %w", pgLogPrefix, err)
	}
	var purged []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s - scan swept id: %w", pgLogPrefix, err)
		}
		purged = append(purged, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - sweep records: %w", pgLogPrefix, err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM specialist_secrets WHERE expires_at <= now()`); err != nil {
		return nil, fmt.Errorf("%s - sweep secrets: %w", pgLogPrefix, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s - commit sweep: %w", pgLogPrefix, err)
	}
	return purged, nil
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s - ping: %w", pgLogPrefix, err)
	}
	return nil
}
