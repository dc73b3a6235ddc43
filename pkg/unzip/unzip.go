package unzip

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KretovDmitry/order-management-service/pkg/logger"
)

// DefaultMaxBodyBytes caps the decompressed request body.
const DefaultMaxBodyBytes = 1 << 20

// gzipBody replaces Read with a decompressing one and closes
// both the gzip stream and the original body.
type gzipBody struct {
	body io.ReadCloser
	zr   *gzip.Reader
	r    io.Reader
}

func newGzipBody(body io.ReadCloser, limit int64) (*gzipBody, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("new gzip reader: %w", err)
	}

	return &gzipBody{body: body, zr: zr, r: io.LimitReader(zr, limit)}, nil
}

func (b *gzipBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *gzipBody) Close() error {
	if err := b.zr.Close(); err != nil {
		_ = b.body.Close()
		return fmt.Errorf("close gzip reader: %w", err)
	}
	return b.body.Close()
}

// Middleware decompresses gzip encoded request bodies. Requests with any
// other content encoding except identity are rejected with 415.
func Middleware(logger logger.Logger) func(next http.Handler) http.Handler {
	return MiddlewareWithLimit(logger, DefaultMaxBodyBytes)
}

// MiddlewareWithLimit is Middleware with a custom cap for the decompressed body.
func MiddlewareWithLimit(logger logger.Logger, limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			encoding := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding")))

			switch encoding {
			case "", "identity":
			case "gzip":
				body, err := newGzipBody(r.Body, limit)
				if err != nil {
					logger.With(r.Context()).Errorf("unzip request body: %s", err)
					http.Error(w, "malformed gzip body", http.StatusBadRequest)
					return
				}
				defer body.Close()

				r.Body = body
				r.Header.Del("Content-Encoding")
				r.ContentLength = -1
			default:
				http.Error(w, fmt.Sprintf("unsupported content encoding %q", encoding),
					http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(f)
	}
}
