package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
)

const testID = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := newPostgresStore(mock)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func sessionRow(t *testing.T, snap model.Snapshot) *pgxmock.Rows {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	return pgxmock.NewRows([]string{"id", "case_number", "account_number", "snapshot", "created_at", "updated_at"}).
		AddRow(testID, "CC0015823420", "204784659052", raw, fixedNow, fixedNow)
}

func TestPostgres_CreateSession(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(pgxmock.AnyArg(), "CC0015823420", "204784659052", pgxmock.AnyArg(), fixedNow, fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sess, err := s.CreateSession(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "CC0015823420", sess.CaseNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, case_number, account_number, snapshot`).
		WithArgs(testID).
		WillReturnRows(sessionRow(t, testSnapshot()))

	sess, err := s.GetSession(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, testID, sess.ID)
	assert.Equal(t, "Intro.\n\nAccount.", sess.Snapshot.Narrative)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, case_number, account_number, snapshot`).
		WithArgs(testID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSession(context.Background(), testID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession_InvalidIDSkipsQuery(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	_, err := s.GetSession(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrInvalidID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSessions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`AND case_number = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("CC1", 10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "case_number", "account_number", "created_at", "updated_at"}).
			AddRow(testID, "CC1", "111", fixedNow, fixedNow))

	got, err := s.ListSessions(context.Background(), model.SessionFilter{CaseNumber: "CC1", Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "111", got[0].AccountNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSessions_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$1$`).
		WithArgs(defaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "case_number", "account_number", "created_at", "updated_at"}))

	got, err := s.ListSessions(context.Background(), model.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteSession_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM sessions`).
		WithArgs(testID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteSession(context.Background(), testID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateSection(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	edited := testSnapshot()
	edited.Sections[0].Content = "New intro."
	edited.Narrative = "New intro.\n\nAccount."

	mock.ExpectQuery(`SELECT id, case_number, account_number, snapshot`).
		WithArgs(testID).
		WillReturnRows(sessionRow(t, testSnapshot()))
	mock.ExpectExec(`UPDATE sessions SET snapshot`).
		WithArgs(pgxmock.AnyArg(), "CC0015823420", "204784659052", fixedNow, testID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT id, case_number, account_number, snapshot`).
		WithArgs(testID).
		WillReturnRows(sessionRow(t, edited))

	got, err := s.UpdateSection(context.Background(), testID, narrative.Introduction, "New intro.")
	require.NoError(t, err)
	assert.Equal(t, "New intro.\n\nAccount.", got.Snapshot.Narrative)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT filename FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS sessions`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("001_sessions.sql").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
