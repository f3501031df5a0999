package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
)

// changes streams the owner's record changes as server-sent events:
//
//	event: record_saved
//	data: {"type":"record_saved","record_id":"...","owner_id":1,"at":"..."}
//
// The stream stays open until the client goes away.
func (h *Handler) changes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Err(ErrNoUserInContext).Send()
		utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error().Err(ErrStreamingUnsupported).Send()
		utils.WriteError(w, ErrStreamingUnsupported.Error(), http.StatusInternalServerError)
		return
	}

	events, cancel := h.services.ChangeBroker.Subscribe(userID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Info().Int64("user_id", userID).Msg("change feed subscriber connected")
	defer log.Info().Int64("user_id", userID).Msg("change feed subscriber disconnected")

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Err(err).Msg("encoding change event failed")
				continue
			}
			if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
