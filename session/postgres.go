package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the slice of a pgx pool the store needs. *pgxpool.Pool satisfies
// it, as do mocks in tests.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS interview_sessions (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interview_sessions_expires
	ON interview_sessions (expires_at)
`

// PostgresStore persists sessions as JSONB rows. Expiry is enforced on read;
// Purge reclaims the rows.
type PostgresStore struct {
	conn PgxConn
	ttl  time.Duration
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(conn PgxConn, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{conn: conn, ttl: ttl}
}

// EnsureSchema creates the sessions table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating postgres schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var raw []byte
	err := s.conn.QueryRow(ctx,
		`SELECT data FROM interview_sessions WHERE id = $1 AND expires_at > now()`,
		id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *PostgresStore) Put(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sess.ID, err)
	}
	_, err = s.conn.Exec(ctx,
		`INSERT INTO interview_sessions (id, data, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		sess.ID, raw, time.Now().UTC().Add(s.ttl))
	if err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.Exec(ctx,
		`DELETE FROM interview_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres delete: %w", err)
	}
	return nil
}

// Purge removes expired rows and returns how many were reclaimed.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := s.conn.Exec(ctx,
		`DELETE FROM interview_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("postgres purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
