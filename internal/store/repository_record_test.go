package store

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordRowColumns = []string{"id", "owner_id", "client_side_id", "content", "created_at", "updated_at"}

func recordRow(id string, owner int64, csid, content string, at time.Time) []driver.Value {
	return []driver.Value{id, owner, csid, []byte(content), at, at}
}

// ── ListRecords ───────────────────────────────────────────────────────────────

func TestRecordRepository_ListRecords(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM records WHERE owner_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(recordRowColumns).
			AddRow(recordRow("srv-1", 7, "c-1", `{"name":"Ivanov","assets":{"cash":10}}`, at)...).
			AddRow(recordRow("srv-2", 7, "c-2", `{"name":"Petrov"}`, at)...))

	records, err := repo.ListRecords(testContext(), 7)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "srv-1", records[0].ID)
	assert.Equal(t, "c-1", records[0].ClientSideID)
	assert.Equal(t, "Ivanov", records[0].Name())
	assert.Equal(t, 10.0, records[0].Content["assets"].(map[string]any)["cash"])
	require.NotNil(t, records[0].LastUpdated)
	assert.Equal(t, at, *records[0].LastUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListRecords_QueryError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("FROM records").WillReturnError(errors.New("boom"))

	_, err := repo.ListRecords(testContext(), 7)
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NotErrorIs(t, err, ErrRetryable)
}

// TestRecordRepository_ListRecords_RetryableError проверяет, что обрыв
// соединения помечается как ErrRetryable.
func TestRecordRepository_ListRecords_RetryableError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("FROM records").WillReturnError(&pgconn.PgError{Code: pgerrcode.ConnectionFailure})

	_, err := repo.ListRecords(testContext(), 7)
	assert.ErrorIs(t, err, ErrRetryable)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestRecordRepository_ListRecords_BadContent(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery("FROM records").
		WillReturnRows(sqlmock.NewRows(recordRowColumns).AddRow(recordRow("srv-1", 7, "c-1", `{not json`, time.Now())...))

	_, err := repo.ListRecords(testContext(), 7)
	assert.ErrorIs(t, err, ErrDecodingValue)
}

// ── CreateRecord / UpdateRecord ───────────────────────────────────────────────

func TestRecordRepository_CreateRecord(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())
	at := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO records")).
		WithArgs("srv-9", int64(7), "c-9", `{"name":"Sidorov"}`).
		WillReturnRows(sqlmock.NewRows(recordRowColumns).AddRow(recordRow("srv-9", 7, "c-9", `{"name":"Sidorov"}`, at)...))

	saved, err := repo.CreateRecord(testContext(), "srv-9", models.Record{
		OwnerID:      7,
		ClientSideID: "c-9",
		Content:      models.Content{"name": "Sidorov"},
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-9", saved.ID)
	assert.Equal(t, "Sidorov", saved.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_UpdateRecord_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE records SET content = $1")).
		WithArgs(`{}`, "missing", int64(7)).
		WillReturnRows(sqlmock.NewRows(recordRowColumns))

	_, err := repo.UpdateRecord(testContext(), models.Record{ID: "missing", OwnerID: 7})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

// ── DeleteRecord ──────────────────────────────────────────────────────────────

func TestRecordRepository_DeleteRecord(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRecordRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE id = $1 AND owner_id = $2")).
		WithArgs("srv-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM records").
		WithArgs("srv-1", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteRecord(testContext(), 7, "srv-1"))
	assert.ErrorIs(t, repo.DeleteRecord(testContext(), 7, "srv-1"), ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
