package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/g5becks/apidox/internal/ui"
)

// requestLogger writes one debug line per request. It is a no-op unless the
// logger is verbose.
func requestLogger(log *ui.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if log == nil || !log.Verbose() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Debug("%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
		})
	}
}
