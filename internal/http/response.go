package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tally/internal/core"
	applog "tally/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps the error taxonomy onto status codes. Unclassified errors
// are internal: the collaborator-specific shape is logged, never leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
	default:
		logger := applog.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Internal error",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return core.ErrValidation
	}
	return nil
}
