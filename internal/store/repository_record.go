package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// recordRepository is the PostgreSQL-backed implementation of
// [RecordRepository]. Record content is stored as JSONB.
type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] backed by db.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectRecordsQuery(ctx, ownerID)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.ListRecords").Int64("owner_id", ownerID).Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListRecords").
			Int64("owner_id", ownerID).
			Msg("failed to execute query for listing records")
		return nil, r.wrapDBError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 16)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recordRepository.ListRecords").
				Int64("owner_id", ownerID).
				Msg("failed to scan record row")
			return nil, scanErr
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "recordRepository.ListRecords").
			Int64("owner_id", ownerID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return records, nil
}

func (r *recordRepository) CreateRecord(ctx context.Context, id string, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	content, err := encodeContent(record.Content)
	if err != nil {
		return models.Record{}, err
	}

	query, args, err := buildInsertRecordQuery(ctx, id, record.OwnerID, record.ClientSideID, content)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.CreateRecord").Msg("failed to create query")
		return models.Record{}, err
	}

	saved, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.CreateRecord").
			Int64("owner_id", record.OwnerID).
			Str("client_side_id", record.ClientSideID).
			Msg("failed to insert record")
		return models.Record{}, r.wrapDBError(ErrExecutingQuery, err)
	}

	return saved, nil
}

func (r *recordRepository) UpdateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx)

	content, err := encodeContent(record.Content)
	if err != nil {
		return models.Record{}, err
	}

	query, args, err := buildUpdateRecordQuery(ctx, record.ID, record.OwnerID, content)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.UpdateRecord").Msg("failed to create query")
		return models.Record{}, err
	}

	saved, err := scanRecord(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.UpdateRecord").
			Int64("owner_id", record.OwnerID).
			Str("record_id", record.ID).
			Msg("failed to update record")
		return models.Record{}, r.wrapDBError(ErrExecutingQuery, err)
	}

	return saved, nil
}

func (r *recordRepository) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteRecordQuery(ctx, id, ownerID)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.DeleteRecord").Msg("failed to create query")
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.DeleteRecord").
			Int64("owner_id", ownerID).
			Str("record_id", id).
			Msg("failed to delete record")
		return r.wrapDBError(ErrExecutingQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record    models.Record
		content   []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&record.ID, &record.OwnerID, &record.ClientSideID, &content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, err
		}
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if len(content) > 0 {
		if err := json.Unmarshal(content, &record.Content); err != nil {
			return models.Record{}, fmt.Errorf("%w: %w", ErrDecodingValue, err)
		}
	}
	record.LastUpdated = &updatedAt

	return record, nil
}

func encodeContent(content models.Content) ([]byte, error) {
	if content == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}
	return data, nil
}
