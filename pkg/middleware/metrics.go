package middleware

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"vistoria/pkg/metrics"

	"github.com/google/uuid"
)

// HTTPMetrics records request counts and latency. Id-like path segments are
// collapsed to ":id" to keep label cardinality bounded.
func HTTPMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.HTTPRequest(r.Method, RouteLabel(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if isIdentifier(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func isIdentifier(segment string) bool {
	if len(segment) == 24 {
		if _, err := hex.DecodeString(segment); err == nil {
			return true
		}
	}
	if len(segment) == 36 {
		if _, err := uuid.Parse(segment); err == nil {
			return true
		}
	}
	return false
}
