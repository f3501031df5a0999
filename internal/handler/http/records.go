package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	records, err := h.services.RecordService.ListRecords(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("listing records failed")
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	_, _ = utils.WriteJSON(w, records, http.StatusOK)
}

// saveRecord creates or updates a record. The owner always comes from the
// token; an owner id in the body is ignored.
func (h *Handler) saveRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	record.OwnerID = userID

	saved, err := h.services.RecordService.SaveRecord(ctx, record)
	if err != nil {
		log.Err(err).
			Int64("user_id", userID).
			Str("record_id", record.ID).
			Str("client_side_id", record.ClientSideID).
			Msg("saving record failed")
		writeServiceError(w, err)
		return
	}

	_, _ = utils.WriteJSON(w, saved, http.StatusOK)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.services.RecordService.DeleteRecord(ctx, userID, id); err != nil {
		log.Err(err).Int64("user_id", userID).Str("record_id", id).Msg("deleting record failed")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
