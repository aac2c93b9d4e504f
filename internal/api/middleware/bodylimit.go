package middleware

import (
	"net/http"
)

// MaxBodySize limits request bodies to maxBytes whatever their Content-Type.
// Mount it on JSON routes only; upload routes apply their own, larger limits.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
