package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
	"github.com/Shivanand-hulikatti/retreat-status/internal/service"
	"github.com/Shivanand-hulikatti/retreat-status/internal/upstream"
)

const (
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationFailed   = "validation_failed"
	codeBookingClosed      = "booking_closed"
	codeRetreatFull        = "retreat_full"
	codeLeadsUnavailable   = "leads_unavailable"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeUpstreamError      = "upstream_error"
	codeInternalError      = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

// writeServiceError maps a service error to a status and code. Unexpected
// errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "retreat not found")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, service.ErrRetreatFull):
		writeError(w, http.StatusConflict, codeRetreatFull, "retreat is fully booked")
	case errors.Is(err, service.ErrBookingClosed):
		writeError(w, http.StatusConflict, codeBookingClosed, "retreat is not open for booking")
	case errors.Is(err, service.ErrLeadsUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeLeadsUnavailable, "lead submission is not available")
	case errors.As(err, &statusErr):
		logger.Warn("upstream request failed", "error", err, "status", statusErr.Code)
		writeError(w, http.StatusBadGateway, codeUpstreamError, "retreat backend unavailable")
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
