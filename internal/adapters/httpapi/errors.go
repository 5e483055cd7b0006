package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/example/shopfloor/internal/apperr"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidTransition, apperr.KindActionInFlight:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// kindFor is the inverse of statusFor, used when a response carries no code.
func kindFor(status int) apperr.Kind {
	switch status {
	case http.StatusConflict:
		return apperr.KindInvalidTransition
	case http.StatusBadRequest:
		return apperr.KindValidation
	case http.StatusNotFound:
		return apperr.KindNotFound
	default:
		return apperr.KindService
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = apperr.KindService
	}
	writeJSON(w, statusFor(kind), errorResponse{Error: err.Error(), Code: string(kind)})
}
