package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
)

// PostgresArchive persists terminal status records so generation history
// survives a restart. In-flight state stays in the memory store; the archive
// only sees completed or failed generations.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// NewPostgresArchive creates the archive and ensures its table exists.
func NewPostgresArchive(ctx context.Context, pool *pgxpool.Pool) (*PostgresArchive, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS generations (
			generation_id TEXT PRIMARY KEY,
			status        TEXT NOT NULL,
			record        JSONB NOT NULL,
			archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create generations table: %w", err)
	}
	return &PostgresArchive{pool: pool}, nil
}

// Record archives a terminal status record. Non-terminal records are
// rejected; a duplicate archive for the same id overwrites the record.
func (a *PostgresArchive) Record(ctx context.Context, st *models.GenerationStatus) error {
	if !IsTerminal(st.Status) {
		return fmt.Errorf("refusing to archive non-terminal status %q", st.Status)
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO generations (generation_id, status, record, archived_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (generation_id)
		DO UPDATE SET status = EXCLUDED.status, record = EXCLUDED.record, archived_at = EXCLUDED.archived_at`,
		st.GenerationID, st.Status, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive generation %s: %w", st.GenerationID, err)
	}
	return nil
}

// Load retrieves an archived record by generation id.
func (a *PostgresArchive) Load(ctx context.Context, id string) (*models.GenerationStatus, error) {
	var payload []byte
	err := a.pool.QueryRow(ctx,
		`SELECT record FROM generations WHERE generation_id = $1`,
		id,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("generation not found")
		}
		return nil, fmt.Errorf("failed to load generation %s: %w", id, err)
	}

	var st models.GenerationStatus
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("failed to decode archived record: %w", err)
	}
	return &st, nil
}
