package httpadapter

import (
	"errors"
	"net/http"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   errorBody             `json:"error"`
	Booking *domain.BookingResult `json:"booking,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: msg}})
}

// classify maps a domain error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest, "missing_field"
	case errors.Is(err, domain.ErrInvalidDays):
		return http.StatusBadRequest, "invalid_days"
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, domain.ErrNoOptionsAvailable):
		return http.StatusUnprocessableEntity, "no_options"
	case errors.Is(err, domain.ErrProviderBookingFailure):
		return http.StatusBadGateway, "booking_failed"
	case errors.Is(err, domain.ErrOracleFailure):
		return http.StatusBadGateway, "oracle_failure"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeError(w, status, code, msg)
}

// writeBookingError reports a failed or partial booking together with what was booked.
func writeBookingError(w http.ResponseWriter, r *http.Request, res *domain.BookingResult, err error) {
	if res == nil {
		writeDomainError(w, r, err)
		return
	}
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("booking not recorded", "booking_id", res.ID, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:   errorBody{Code: code, Message: err.Error()},
		Booking: res,
	})
}
