package web

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// chain applies middlewares in order (outer to inner)
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}

// csrfProtect guards every form POST. The listen address and its localhost
// alias are trusted origins since the view is served over plain HTTP.
func csrfProtect(key []byte, listenAddr string) func(http.Handler) http.Handler {
	origins := []string{listenAddr}
	if _, port, err := net.SplitHostPort(listenAddr); err == nil {
		origins = append(origins, net.JoinHostPort("localhost", port), net.JoinHostPort("127.0.0.1", port))
	}

	protect := csrf.Protect(
		key,
		csrf.Secure(false),
		csrf.Path("/"),
		csrf.TrustedOrigins(origins),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// gorilla/csrf assumes HTTPS unless told otherwise
			r = csrf.PlaintextHTTPRequest(r)
			protect(next).ServeHTTP(w, r)
		})
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
