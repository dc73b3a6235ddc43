// Package accesslog provides a middleware that records every RESTful API call in a log message.
package accesslog

import (
	"net/http"
	"time"

	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns a middleware that records an access log message for every HTTP request being processed.
func Handler(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				l.With(r.Context(), "duration", time.Since(start).Milliseconds(), "status", status).
					Infof("%s %s %s %d %d", r.Method, r.URL.Path, r.Proto, status, ww.BytesWritten())
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(f)
	}
}
