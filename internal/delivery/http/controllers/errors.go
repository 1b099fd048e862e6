package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "echoo/internal/delivery/http/helpers"
	"echoo/internal/domain"
)

// writeDomainError maps a service error onto the API error envelope. Known
// sentinel errors become their HTTP status; anything else is logged and
// reported as a 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrPreconditionFailed):
		h.WriteJSONError(w, http.StatusPreconditionFailed, h.ErrCodePreconditionFailed, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeUnavailable, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}
