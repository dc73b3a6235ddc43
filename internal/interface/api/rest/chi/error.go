package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/header"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
)

// decodeJSON reads and closes the request body. With strict
// set fields missing in v are rejected.
func decodeJSON(r *http.Request, v any, strict bool) error {
	// Check content type.
	if !header.IsApplicationJSONContentType(r) {
		return errs.NewValidationError(header.ContentType, "must be %s, got %q",
			header.ApplicationJSON, r.Header.Get(header.ContentType))
	}

	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return checkJSONDecodeError(err)
	}

	return nil
}

func checkJSONDecodeError(err error) error {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &typeErr):
		return errs.NewValidationError(typeErr.Field, "must be of type %s, got %s", typeErr.Type, typeErr.Value)
	case errors.Is(err, io.EOF):
		return errs.NewValidationError("body", "must not be empty")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return errs.NewValidationError("body", "malformed json")
	}

	// The decoder has no typed error for this one.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return errs.NewValidationError(strings.Trim(field, `"`), "unknown field")
	}

	// Values rejected by custom unmarshalers, prices for one.
	return errs.NewValidationError("body", "%s", err)
}

// handleError writes err to the client and logs it under the given handler name.
func handleError(w http.ResponseWriter, r *http.Request, logger logger.Logger, name string, err error) {
	code := response.WriteError(w, err)

	l := logger.With(r.Context(), "status", code)
	if code >= http.StatusInternalServerError {
		l.Errorf("%s [%d]: %s", name, code, err)
		return
	}
	l.Warnf("%s [%d]: %s", name, code, err)
}
