package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps game and store errors to HTTP statuses. Anything
// unrecognized is logged and reported as an internal error.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		invalidErr    *quizbowl.InvalidEventError
		rangeErr      *quizbowl.OutOfRangeError
		validationErr *quizbowl.ValidationError
	)
	switch {
	case errors.As(err, &invalidErr):
		writeError(w, http.StatusConflict, invalidErr.Error())
	case errors.As(err, &rangeErr):
		writeError(w, http.StatusNotFound, rangeErr.Error())
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: validationErr.Message,
			Field: validationErr.Field,
		})
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, errBadPin):
		writeError(w, http.StatusUnauthorized, errBadPin.Error())
	case errors.Is(err, sheets.ErrBusy), errors.Is(err, sheets.ErrNoPrompt):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
