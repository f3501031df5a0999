// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
	"github.com/MKhiriev/go-plan-keeper/models"
)

// errPersistTimeout is returned when a remote write loses the race against
// the reconciler's timer.
var errPersistTimeout = errors.New("remote write timed out")

// ClassifyError converts a remote failure into a [models.SyncError]. It is
// the only place where adapter errors are interpreted. Unknown errors are
// validation-class: shown to the user and not retried.
func ClassifyError(op string, err error) *models.SyncError {
	if err == nil {
		return nil
	}

	return &models.SyncError{Class: classOf(err), Op: op, Err: err}
}

func classOf(err error) models.ErrorClass {
	switch {
	case errors.Is(err, adapter.ErrLoopDetected),
		errors.Is(err, adapter.ErrUnprocessable),
		errors.Is(err, adapter.ErrMalformedResponse):
		return models.ErrorClassCritical

	case errors.Is(err, errPersistTimeout),
		errors.Is(err, adapter.ErrTimeout),
		errors.Is(err, adapter.ErrNetwork),
		errors.Is(err, adapter.ErrAborted),
		errors.Is(err, adapter.ErrServiceUnavailable),
		errors.Is(err, adapter.ErrInternalServerError),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return models.ErrorClassNetwork

	// An expired session that could not be restored keeps the data local
	// until the next wake restores it.
	case errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrNoSession):
		return models.ErrorClassNetwork
	}

	// ErrBadRequest, ErrForbidden, ErrNotFound, ErrConflict,
	// ErrPayloadTooLarge and anything unrecognised.
	return models.ErrorClassValidation
}
