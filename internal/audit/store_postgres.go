package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS verification_audit (
    id          UUID PRIMARY KEY,
    occurred_at TIMESTAMPTZ NOT NULL,
    action      TEXT NOT NULL,
    issuer      TEXT NOT NULL,
    subject     TEXT NOT NULL,
    request_id  TEXT,
    detail      TEXT
);
CREATE INDEX IF NOT EXISTS verification_audit_issuer_subject_idx
    ON verification_audit (issuer, subject, occurred_at);
`

// PostgresStore appends events to a verification_audit table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_audit (id, occurred_at, action, issuer, subject, request_id, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.Timestamp, string(event.Action), event.Issuer, event.Subject, event.RequestID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
