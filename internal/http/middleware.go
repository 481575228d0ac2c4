package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/internal/logging"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier on requests and responses.
const RequestIDHeader = "X-Request-ID"

// RequestObserver records completed requests.
type RequestObserver interface {
	ObserveRequest(route string, code int, elapsed time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func instrument(route string, observer RequestObserver, logger interfaces.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		if observer != nil {
			observer.ObserveRequest(route, rec.status, elapsed)
		}
		reqLogger := logging.WithFields(logger, map[string]any{
			"request_id": requestID,
			"route":      route,
		})
		if rec.status >= http.StatusInternalServerError {
			reqLogger.Error("http.request.failed", "status", rec.status, "duration", elapsed)
			return
		}
		reqLogger.Debug("http.request.completed", "status", rec.status, "duration", elapsed)
	})
}
