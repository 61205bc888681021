package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wayfare/backend/internal/logger"
)

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	log = log.Action("http_request")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				args := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", chimw.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					log.Warn("request failed", args...)
				default:
					log.Info("request", args...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
