package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/attachments"
	"p9e.in/towerpro/pkg/store"
	"p9e.in/towerpro/pkg/wizard"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownStep),
		errors.Is(err, models.ErrPayloadMismatch),
		errors.Is(err, models.ErrUnknownCheck),
		errors.Is(err, models.ErrInvalidCondition),
		errors.Is(err, models.ErrUnknownSection),
		errors.Is(err, models.ErrUnknownTarget),
		errors.Is(err, attachments.ErrNotImage),
		errors.Is(err, attachments.ErrTooLarge),
		errors.Is(err, attachments.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, wizard.ErrNoSession),
		errors.Is(err, errInspectorNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrNotAtReview),
		errors.Is(err, wizard.ErrSaveInProgress),
		errors.Is(err, wizard.ErrFinalized):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}
