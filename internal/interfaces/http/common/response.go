package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Warn("encode JSON response", zap.Error(err))
	}
}

// WriteMessage writes the {"error": message} body used by every failure response.
func WriteMessage(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, map[string]string{"error": message})
}

// WriteError maps err onto a status code. Validation errors become 400 with
// their message, ErrNotFound becomes 404, anything else is logged and becomes
// 500 with the generic message.
func WriteError(logger *zap.Logger, w http.ResponseWriter, err error, message string, fields ...zap.Field) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteMessage(logger, w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteMessage(logger, w, http.StatusNotFound, domain.ErrNotFound.Error())
	default:
		if logger != nil {
			logger.Error(message, append(fields, zap.Error(err))...)
		}
		WriteMessage(logger, w, http.StatusInternalServerError, message)
	}
}
