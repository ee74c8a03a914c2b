package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/db"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// PostgresStore implements Store using pgxpool. Snapshots are JSONB.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

// PoolConfig holds optional connection pool sizing.
type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
}

// NewPostgres connects a pool and pings it.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns, cfg.MinConns = 10, 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			cfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			cfg.MinConns = poolCfg.MinConns
		}
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool), nil
}

func newPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate applies the embedded postgres migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, s.pool, migrationFS, "migrations/postgres")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, snap model.Snapshot) (*model.Session, error) {
	sess := newSession(snap, s.now())
	raw, err := json.Marshal(sess.Snapshot)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, case_number, account_number, snapshot, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.CaseNumber, sess.AccountNumber, raw, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert session")
	}
	return sess, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var sess model.Session
	var raw []byte
	err = s.pool.QueryRow(ctx,
		`SELECT id, case_number, account_number, snapshot, created_at, updated_at FROM sessions WHERE id = $1`,
		id,
	).Scan(&sess.ID, &sess.CaseNumber, &sess.AccountNumber, &raw, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get session %s", id)
	}
	if err := json.Unmarshal(raw, &sess.Snapshot); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal snapshot %s", id)
	}
	return &sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.SessionSummary, error) {
	query := `SELECT id, case_number, account_number, created_at, updated_at FROM sessions WHERE true`
	var args []any
	if filter.CaseNumber != "" {
		args = append(args, filter.CaseNumber)
		query += fmt.Sprintf(` AND case_number = $%d`, len(args))
	}
	args = append(args, listLimit(filter))
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	out := []model.SessionSummary{}
	for rows.Next() {
		var sum model.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.CaseNumber, &sum.AccountNumber, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan session")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list sessions iterate")
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, id string, snap model.Snapshot) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET snapshot = $1, case_number = $2, account_number = $3, updated_at = $4 WHERE id = $5`,
		raw, caseNumber(snap), accountNumber(snap), s.now(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save snapshot %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete session %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateSection(ctx context.Context, id, section, content string) (*model.Session, error) {
	return editSection(ctx, s, id, section, content, false)
}

func (s *PostgresStore) UpdateRecommendation(ctx context.Context, id, section, content string) (*model.Session, error) {
	return editSection(ctx, s, id, section, content, true)
}
