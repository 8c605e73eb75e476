package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epidash/backend/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS fetch_log (
		id          UUID PRIMARY KEY,
		session_id  TEXT NOT NULL DEFAULT '',
		view        TEXT NOT NULL,
		slot        TEXT NOT NULL,
		generation  BIGINT NOT NULL,
		params      TEXT NOT NULL DEFAULT '',
		outcome     TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL,
		timestamp   TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS fetch_log_timestamp_idx ON fetch_log (timestamp DESC);
`

// PostgresRepository implements domain.FetchLogRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the fetch_log table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate schema: %w", err)
	}
	return nil
}

// SaveFetchRecord persists a fetch record to PostgreSQL
func (r *PostgresRepository) SaveFetchRecord(ctx context.Context, rec domain.FetchRecord) error {
	query := `
		INSERT INTO fetch_log (
			id, session_id, view, slot, generation, params,
			outcome, error, duration_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.SessionID, rec.View, rec.Slot, int64(rec.Generation), rec.Params,
		rec.Outcome, rec.Error, rec.Duration.Milliseconds(), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save fetch record: %w", err)
	}

	return nil
}

// RecentFetchRecords retrieves the newest fetch records from PostgreSQL
func (r *PostgresRepository) RecentFetchRecords(ctx context.Context, limit int) ([]domain.FetchRecord, error) {
	query := `
		SELECT id::text, session_id, view, slot, generation, params,
			   outcome, error, duration_ms, timestamp
		FROM fetch_log
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query fetch records: %w", err)
	}
	defer rows.Close()

	results := []domain.FetchRecord{}
	for rows.Next() {
		var (
			rec        domain.FetchRecord
			generation int64
			durationMS int64
		)
		err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.View, &rec.Slot, &generation, &rec.Params,
			&rec.Outcome, &rec.Error, &durationMS, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan fetch record row: %w", err)
		}
		rec.Generation = uint64(generation)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read fetch records: %w", err)
	}

	return results, nil
}

// PruneFetchRecords deletes fetch records older than the cutoff
func (r *PostgresRepository) PruneFetchRecords(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fetch_log WHERE timestamp < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to prune fetch records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
