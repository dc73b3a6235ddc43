package rest

import (
	"net/http"

	"github.com/KretovDmitry/order-management-service/internal/application/errs"
	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/internal/interface/api/rest/response"
	"github.com/KretovDmitry/order-management-service/pkg/accesslog"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/KretovDmitry/order-management-service/pkg/metrics"
	"github.com/KretovDmitry/order-management-service/pkg/unzip"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nanmu42/gzip"
)

// InitChi builds the root router. Metrics are optional.
func InitChi(cfg *config.Config, logger logger.Logger, m *metrics.ServerMetrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(accesslog.Handler(logger))
	router.Use(middleware.Recoverer)
	if m != nil {
		router.Use(m.Middleware)
	}
	if cfg.HTTPServer.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.HTTPServer.RequestTimeout))
	}
	router.Use(gzip.DefaultHandler().WrapHandler)
	router.Use(unzip.Middleware(logger))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, errs.ErrNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		_ = response.WriteJSON(w, http.StatusMethodNotAllowed, errs.JSON{Error: "method not allowed"})
	})

	if m != nil {
		router.Method(http.MethodGet, cfg.Metrics.Path, m.Handler())
	}

	return router
}

type (
	MiddlewareFunc func(http.Handler) http.Handler

	ChiServerOptions struct {
		BaseRouter  chi.Router
		BaseURL     string
		Middlewares []MiddlewareFunc
	}
)
