package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/validators"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// RecordValidationService rejects records that violate the configured
// limits before they reach the wrapped service.
type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService(limits validators.Limits) RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewRecordValidator(limits),
	}
}

func (v *RecordValidationService) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidDataProvided
	}
	return v.inner.ListRecords(ctx, ownerID)
}

func (v *RecordValidationService) SaveRecord(ctx context.Context, record models.Record) (models.Record, error) {
	if err := v.validator.Validate(ctx, record); err != nil {
		return models.Record{}, fmt.Errorf("error during record validation before saving: %w", err)
	}

	return v.inner.SaveRecord(ctx, record)
}

func (v *RecordValidationService) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	if ownerID <= 0 || id == "" {
		return ErrInvalidDataProvided
	}
	return v.inner.DeleteRecord(ctx, ownerID, id)
}

func (v *RecordValidationService) Wrap(wrapped RecordService) RecordService {
	v.inner = wrapped
	return v
}
