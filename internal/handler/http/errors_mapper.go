package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-plan-keeper/internal/service"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/internal/validators"
)

// errorStatusMap assigns the status the client classifies the failure by.
// 508 and 422 are integrity failures the client asks the user to resolve;
// the other 4xx are rejections of one particular payload.
var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrRefreshTokenInvalid:     http.StatusUnauthorized,
	service.ErrUnreadableStoredRecord:  http.StatusUnprocessableEntity,

	validators.ErrInvalidOwnerID:      http.StatusBadRequest,
	validators.ErrInvalidClientSideID: http.StatusBadRequest,
	validators.ErrInvalidRecordID:     http.StatusBadRequest,
	validators.ErrNameTooLong:         http.StatusBadRequest,
	validators.ErrInvalidContent:      http.StatusBadRequest,
	validators.ErrContentTooLarge:     http.StatusRequestEntityTooLarge,
	validators.ErrContentTooDeep:      http.StatusLoopDetected,

	store.ErrLoginAlreadyExists:   http.StatusConflict,
	store.ErrNoUserWasFound:       http.StatusNotFound,
	store.ErrRecordNotFound:       http.StatusNotFound,
	store.ErrRefreshTokenNotFound: http.StatusUnauthorized,
	store.ErrRetryable:            http.StatusServiceUnavailable,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the mapped status. Internal failures never
// leak their message.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	utils.WriteError(w, message, status)
}
