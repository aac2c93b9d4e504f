package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *wrappedWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// silentPaths are high-frequency endpoints that are only logged on errors (status >= 400).
var silentPaths = map[string]bool{
	"/api/health": true,
}

// silentSuffixes cover per-session polling routes.
var silentSuffixes = []string{"/events", "/timeline"}

func isSilent(path string) bool {
	if silentPaths[path] {
		return true
	}
	for _, s := range silentSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func Logger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			if isSilent(r.URL.Path) && wrapped.statusCode < 400 {
				return
			}
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
