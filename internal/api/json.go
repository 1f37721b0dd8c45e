package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shelf/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error  string            `json:"error" validate:"required"`
	Fields map[string]string `json:"fields,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeServiceError maps a catalog error to a status code and body.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...slog.Attr) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		body := errorBody(ve.Error())
		var fieldErrs validation.Errors
		if errors.As(ve.Err, &fieldErrs) {
			body.Fields = make(map[string]string, len(fieldErrs))
			for field, fe := range fieldErrs {
				body.Fields[field] = fe.Error()
			}
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("book not found"))
	case errors.Is(err, apperr.ErrStoreUnavailable):
		slog.LogAttrs(r.Context(), slog.LevelError, op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store unavailable"))
	default:
		slog.LogAttrs(r.Context(), slog.LevelError, op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
