package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"auth-session-gateway/internal/audit"
	"auth-session-gateway/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds client-supplied request ids before they reach logs
// and audit rows.
const maxRequestIDLen = 64

// RequestLog assigns every request a correlation id, echoes it on the
// response, stores request metadata in the context, and writes one structured
// log line per request when it completes.
func RequestLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if len(requestID) > maxRequestIDLen {
				requestID = requestID[:maxRequestIDLen]
			}
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(requestIDHeader, requestID)

			meta := &RequestMeta{
				RequestID: requestID,
				IP:        ClientIP(r),
				UserAgent: r.UserAgent(),
			}
			r = r.WithContext(context.WithValue(r.Context(), requestMetaKey, meta))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			// Deferred so a panicking handler still produces a completion
			// record and a well-formed 500 response.
			defer func() {
				panicked := recover()
				if panicked != nil && !rec.wroteHeader {
					rec.Header().Set("Content-Type", "application/json")
					rec.WriteHeader(http.StatusInternalServerError)
					_, _ = rec.Write([]byte(`{"message":"Server Error"}` + "\n"))
				}

				fields := []zap.Field{
					logging.RequestID(requestID),
					logging.Method(r.Method),
					logging.Path(r.URL.Path),
					logging.StatusCode(rec.status),
					logging.DurationMs(time.Since(start).Milliseconds()),
					logging.UserID(meta.UserID),
					logging.IPAddress(meta.IP),
					logging.UserAgent(meta.UserAgent),
				}
				if panicked != nil {
					fields = append(fields, zap.Any("panic", panicked))
				}
				switch {
				case rec.status >= http.StatusInternalServerError:
					logger.Error("request completed", fields...)
				case rec.status == http.StatusTooManyRequests:
					logger.Warn("request completed", fields...)
				default:
					logger.Info("request completed", fields...)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// AuditExtractor adapts the request metadata stored in context to the audit
// logger's extractor hook.
func AuditExtractor() audit.Extractor {
	return func(ctx context.Context) audit.RequestInfo {
		meta := GetRequestMeta(ctx)
		return audit.RequestInfo{
			RequestID: meta.RequestID,
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
		}
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.wroteHeader = true
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}
