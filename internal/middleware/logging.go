package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs every request once it is served. Client errors go out at debug level,
// server errors at warn, everything else at trace.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": resp.statusCode,
				"took":   time.Since(begin).String(),
			})
			switch {
			case resp.statusCode >= http.StatusInternalServerError:
				entry.Warn("request failed")
			case resp.statusCode >= http.StatusBadRequest:
				entry.Debug("request rejected")
			default:
				entry.Trace("request")
			}
		})
	}
}
