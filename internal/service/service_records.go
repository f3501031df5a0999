package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// RecordServiceWrapper defines middleware composition for RecordService.
// Implementations wrap an existing RecordService to add behavior such as
// validation or change notifications.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}

type recordService struct {
	recordRepository store.RecordRepository
	ids              utils.IDGenerator

	logger *logger.Logger
}

// NewRecordService creates the storage-backed RecordService. Validation and
// change notifications are layered on top with RecordServiceWrapper values.
func NewRecordService(recordRepository store.RecordRepository, ids utils.IDGenerator, logger *logger.Logger) RecordService {
	return &recordService{
		recordRepository: recordRepository,
		ids:              ids,
		logger:           logger,
	}
}

func (s *recordService) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	records, err := s.recordRepository.ListRecords(ctx, ownerID)
	if err != nil {
		return nil, wrapStoredRecordError(err)
	}
	return records, nil
}

// SaveRecord implements [RecordService]. A new record gets a fresh id; when
// a row with the same client side id already exists its id is kept, so a
// create retried after a lost response returns the first result.
func (s *recordService) SaveRecord(ctx context.Context, record models.Record) (models.Record, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "recordService.SaveRecord").
		Int64("owner_id", record.OwnerID).
		Str("client_side_id", record.ClientSideID).
		Logger()

	var (
		saved models.Record
		err   error
	)
	if record.IsLocal() {
		saved, err = s.recordRepository.CreateRecord(ctx, s.ids.Generate(), record)
	} else {
		saved, err = s.recordRepository.UpdateRecord(ctx, record)
	}
	if err != nil {
		log.Err(err).Str("record_id", record.ID).Msg("saving record failed")
		return models.Record{}, wrapStoredRecordError(err)
	}

	log.Debug().Str("record_id", saved.ID).Msg("record saved")
	return saved, nil
}

func (s *recordService) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	if err := s.recordRepository.DeleteRecord(ctx, ownerID, id); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "recordService.DeleteRecord").
			Int64("owner_id", ownerID).
			Str("record_id", id).
			Msg("deleting record failed")
		return err
	}
	return nil
}

// wrapStoredRecordError marks rows whose stored content no longer decodes.
func wrapStoredRecordError(err error) error {
	if errors.Is(err, store.ErrDecodingValue) {
		return fmt.Errorf("%w: %w", ErrUnreadableStoredRecord, err)
	}
	return err
}
