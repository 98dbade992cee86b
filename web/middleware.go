package web

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/op/go-logging"
)

// statusRecorder remembers the status a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs method, path, status, and duration of every
// request. It also turns handler panics into a 500, so one bad request
// doesn't take down the server.
func LoggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Errorf("Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, p, debug.Stack())
				http.Error(recorder, "Internal server error", http.StatusInternalServerError)
			}
			logger.Infof("[%s] %s %s %d %s", r.RemoteAddr, r.Method, r.URL.Path,
				recorder.status, time.Since(start).Round(time.Millisecond))
		}()
		next.ServeHTTP(recorder, r)
	})
}
