package middleware

import (
	"fmt"
	"net/http"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/application/policy"
	"github.com/KretovDmitry/order-management-service/internal/domain/entities/user"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/header"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
)

// Authentication middleware. Puts the user of a valid bearer token into the request context.
func Authenticate(service interfaces.AuthService, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			token, err := header.BearerToken(r)
			if err != nil {
				errorHandlerFunc(w, r, logger, err)
				return
			}

			u, err := service.GetUserFromToken(r.Context(), token)
			if err != nil {
				errorHandlerFunc(w, r, logger, err)
				return
			}

			r = r.WithContext(user.NewContext(r.Context(), u))

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(f)
	}
}

// Permit rejects the request before its body is read unless the policy
// allows the operation regardless of the resource owner.
// Must run after Authenticate.
func Permit(op policy.Operation, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			u, _ := user.FromContext(r.Context())

			decision := policy.Authorize(u, op, "")
			if !decision.Allowed {
				err := errs.ErrForbidden
				if decision.Reason == policy.ReasonUnauthenticated {
					err = errs.ErrUnauthorized
				}
				errorHandlerFunc(w, r, logger, fmt.Errorf("%w: %s %s", err, op, decision.Reason))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(f)
	}
}

func errorHandlerFunc(w http.ResponseWriter, r *http.Request, logger logger.Logger, err error) {
	code := response.WriteError(w, err)
	logger.With(r.Context()).Warnf("auth middleware [%d]: %s", code, err)
}
