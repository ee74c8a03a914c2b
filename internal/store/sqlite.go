package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/db"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn in WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Migrate applies the embedded sqlite migrations not yet recorded.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	filename   TEXT PRIMARY KEY,
	applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
)`); err != nil {
		return eris.Wrap(err, "sqlite: ensure migration table")
	}

	migrations, err := db.Migrations(migrationFS, "migrations/sqlite")
	if err != nil {
		return err
	}
	for _, m := range migrations {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, m.Name).Scan(&n); err != nil {
			return eris.Wrap(err, "sqlite: query applied migrations")
		}
		if n > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.SQL); err != nil {
			return eris.Wrapf(err, "sqlite: apply migration %s", m.Name)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES (?)`, m.Name); err != nil {
			return eris.Wrapf(err, "sqlite: record migration %s", m.Name)
		}
		zap.L().Info("migration applied", zap.String("driver", "sqlite"), zap.String("file", m.Name))
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, snap model.Snapshot) (*model.Session, error) {
	sess := newSession(snap, s.now())
	raw, err := json.Marshal(sess.Snapshot)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, case_number, account_number, snapshot, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CaseNumber, sess.AccountNumber, string(raw), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert session")
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var sess model.Session
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, case_number, account_number, snapshot, created_at, updated_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.CaseNumber, &sess.AccountNumber, &raw, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get session %s", id)
	}
	if err := json.Unmarshal([]byte(raw), &sess.Snapshot); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal snapshot %s", id)
	}
	return &sess, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.SessionSummary, error) {
	query := `SELECT id, case_number, account_number, created_at, updated_at FROM sessions WHERE 1=1`
	var args []any
	if filter.CaseNumber != "" {
		query += ` AND case_number = ?`
		args = append(args, filter.CaseNumber)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.SessionSummary{}
	for rows.Next() {
		var sum model.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.CaseNumber, &sum.AccountNumber, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list sessions iterate")
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, id string, snap model.Snapshot) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET snapshot = ?, case_number = ?, account_number = ?, updated_at = ? WHERE id = ?`,
		string(raw), caseNumber(snap), accountNumber(snap), s.now(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save snapshot %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete session %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) UpdateSection(ctx context.Context, id, section, content string) (*model.Session, error) {
	return editSection(ctx, s, id, section, content, false)
}

func (s *SQLiteStore) UpdateRecommendation(ctx context.Context, id, section, content string) (*model.Session, error) {
	return editSection(ctx, s, id, section, content, true)
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}
