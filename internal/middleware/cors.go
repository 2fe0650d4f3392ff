package middleware

import "net/http"

const (
	allowOrigin  = "*"
	allowHeaders = "Content-Type, Authorization"
	allowMethods = "GET,POST,OPTIONS"
)

// CORS sets the same permissive headers on every response and answers any
// OPTIONS request itself with 204 and an empty body, on every path.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Allow-Methods", allowMethods)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
