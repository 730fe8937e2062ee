package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type used for keys in the context.
type ContextKey string

// OriginKey stores the client-facing scheme://host of the request.
const OriginKey ContextKey = "origin"

// RequestOrigin returns scheme://host as the client addressed the service.
// With trustProxy the X-Forwarded-Proto and X-Forwarded-Host headers set by a
// TLS-terminating proxy take precedence; only their first value is used.
func RequestOrigin(r *http.Request, trustProxy bool) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if trustProxy {
		if proto := firstValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
			scheme = strings.ToLower(proto)
		}
		if fwdHost := firstValue(r.Header.Get("X-Forwarded-Host")); fwdHost != "" {
			host = fwdHost
		}
	}

	return strings.TrimRight(scheme+"://"+host, "/")
}

func firstValue(header string) string {
	v, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(v)
}

// InjectOrigin adds the origin to the request context.
func InjectOrigin(req *http.Request, origin string) *http.Request {
	ctx := context.WithValue(req.Context(), OriginKey, origin)
	return req.WithContext(ctx)
}

// WithOrigin resolves the request origin once and stores it in the context.
func WithOrigin(trustProxy bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, InjectOrigin(r, RequestOrigin(r, trustProxy)))
		})
	}
}

// OriginFrom returns the origin stored by WithOrigin, falling back to the
// request's own scheme and host.
func OriginFrom(r *http.Request) string {
	if origin, ok := r.Context().Value(OriginKey).(string); ok && origin != "" {
		return origin
	}
	return RequestOrigin(r, false)
}
