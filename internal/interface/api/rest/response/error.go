package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
)

// Public messages of 5xx responses, the cause is only logged.
const (
	MsgInternal           = "internal server error"
	MsgStorageUnavailable = "storage unavailable"
	MsgTimeout            = "request timed out"
)

// Error maps err to the status code and the body seen by the client.
func Error(err error) (int, errs.JSON) {
	// Only the sentinel message is sent to the client.
	if authErr := errs.AuthError(err); authErr != nil {
		return http.StatusUnauthorized, errs.JSON{Error: authErr.Error()}
	}

	var ve *errs.ValidationError

	switch {
	// Status Bad Request (400).
	case errors.As(err, &ve):
		return http.StatusBadRequest, errs.JSON{Error: ve.Error(), Field: ve.Field, Constraint: ve.Constraint}
	case errors.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest, errs.JSON{Error: err.Error()}

	// Status Forbidden (403).
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, errs.JSON{Error: errs.ErrForbidden.Error()}

	// Status Not Found (404).
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, errs.JSON{Error: errs.ErrNotFound.Error()}

	// Status Conflict (409).
	case errors.Is(err, errs.ErrDataConflict):
		return http.StatusConflict, errs.JSON{Error: errs.ErrDataConflict.Error()}

	// Status Bad Gateway (502).
	case errors.Is(err, errs.ErrStorageUnavailable):
		return http.StatusBadGateway, errs.JSON{Error: MsgStorageUnavailable}

	// Status Gateway Timeout (504).
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errs.JSON{Error: MsgTimeout}
	}

	return http.StatusInternalServerError, errs.JSON{Error: MsgInternal}
}

// WriteError sends err in the JSON format and returns the status code written.
func WriteError(w http.ResponseWriter, err error) int {
	code, body := Error(err)

	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	if err = WriteJSON(w, code, body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}

	return code
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
