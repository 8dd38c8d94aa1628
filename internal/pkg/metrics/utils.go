package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UnmatchedRoute labels requests no route matched, so random paths cannot
// grow the label set.
const UnmatchedRoute = "unmatched"

// GetRoutePath returns the chi route pattern for r, or a normalized path when
// no pattern was recorded.
func GetRoutePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return NormalizePath(r.URL.Path)
}

// NormalizePath maps a request path onto the route it belongs to.
func NormalizePath(path string) string {
	switch {
	case path == "" || path == "/":
		return "/"
	case path == "/health", path == "/ready", path == "/metrics", path == "/redoc":
		return path
	case path == "/api/shorten", path == "/api/metrics/top-domains":
		return path
	case strings.HasPrefix(path, "/api/r/"):
		return "/api/r/{code}"
	case strings.HasPrefix(path, "/swagger"):
		return "/swagger/*"
	default:
		return UnmatchedRoute
	}
}

func FormatStatusCode(statusCode int) string {
	return strconv.Itoa(statusCode)
}
