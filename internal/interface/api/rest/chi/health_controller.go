package rest

import (
	"net/http"

	"github.com/KretovDmitry/order-management-service/internal/application/interfaces"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type HealthController struct {
	service interfaces.OrderService
	logger  logger.Logger
}

// NewHealthController registers the public root and health handlers.
func NewHealthController(service interfaces.OrderService, logger logger.Logger, options ChiServerOptions) {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}

	c := HealthController{service: service, logger: logger}

	r.Group(func(r chi.Router) {
		for _, middleware := range options.Middlewares {
			r.Use(middleware)
		}
		r.Get(options.BaseURL+"/", c.Root)
		r.Get(options.BaseURL+"/health", c.Health)
	})
}

func (c *HealthController) Root(w http.ResponseWriter, _ *http.Request) {
	_ = response.WriteJSON(w, http.StatusOK, response.RootRunning)
}

// Health pings the order storage.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Ping(r.Context()); err != nil {
		c.logger.With(r.Context()).Errorf("health check failed: %s", err)
		_ = response.WriteJSON(w, http.StatusServiceUnavailable, response.Unhealthy)
		return
	}

	_ = response.WriteJSON(w, http.StatusOK, response.Healthy)
}
