package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/request"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type AuthController struct {
	service         interfaces.AuthService
	logger          logger.Logger
	tokenExpiration time.Duration
}

// NewAuthController registers http.Handlers with additional options.
func NewAuthController(
	service interfaces.AuthService,
	tokenExpiration time.Duration,
	logger logger.Logger,
	options ChiServerOptions,
) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := AuthController{
		service:         service,
		tokenExpiration: tokenExpiration,
		logger:          logger,
	}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Post(options.BaseURL+"/auth/login", c.Login)
	})
}

// Login user (POST /auth/login HTTP/1.1).
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	// Read and decode payload.
	var p request.Login
	if err := decodeJSON(r, &p, false); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	// Check payload.
	if err := p.Validate(); err != nil {
		c.ErrorHandlerFunc(w, r, err)
		return
	}

	// Login user.
	u, err := c.service.Login(r.Context(), p.Login, p.Password)
	if err != nil {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("login: %w", err))
		return
	}

	// Build authentication token.
	authToken, err := c.service.BuildAuthToken(u)
	if err != nil {
		c.ErrorHandlerFunc(w, r, fmt.Errorf("build token: %w", err))
		return
	}

	c.logger.With(r.Context(), "user_id", u.ID).Infof("%s logged in", u.Role)

	if err = response.WriteJSON(w, http.StatusOK, response.NewLogin(authToken, c.tokenExpiration)); err != nil {
		c.logger.With(r.Context()).Errorf("auth controller: write response: %s", err)
	}
}

// ErrorHandlerFunc handles sending of an error in the JSON format,
// writing appropriate status code and handling the failure to marshal that.
func (c *AuthController) ErrorHandlerFunc(w http.ResponseWriter, r *http.Request, err error) {
	handleError(w, r, c.logger, "auth controller", err)
}
