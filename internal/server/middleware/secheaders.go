package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// hstsValue is sent only in production on requests that arrived over https.
const hstsValue = "max-age=31536000; includeSubDomains; preload"

var defaultSecurityHeaders = map[string]string{
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'",
}

// SecurityHeaders injects baseline security headers into every response.
// Headers a handler has already set are left untouched; injection happens at
// write time so handler values win regardless of ordering. When hsts is true,
// Strict-Transport-Security is added only on requests that actually arrived
// over https, so plain-HTTP traffic never pins the browser to TLS.
func SecurityHeaders(hsts bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&headerInjector{ResponseWriter: w, includeHSTS: hsts && secureRequest(r)}, r)
		})
	}
}

// secureRequest reports whether the request arrived over https, either on the
// connection itself or per the terminating proxy's X-Forwarded-Proto.
func secureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

type headerInjector struct {
	http.ResponseWriter
	includeHSTS bool
	wroteHeader bool
}

func (w *headerInjector) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		h := w.Header()
		for name, value := range defaultSecurityHeaders {
			if h.Get(name) == "" {
				h.Set(name, value)
			}
		}
		if w.includeHSTS && h.Get("Strict-Transport-Security") == "" {
			h.Set("Strict-Transport-Security", hstsValue)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerInjector) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
