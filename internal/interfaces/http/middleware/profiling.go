package middleware

import (
	"context"
	"strings"

	"github.com/gridbase/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig controls which requests get profiling labels attached.
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths are matched exactly; SkipPathPrefixes by prefix.
	SkipPaths        []string
	SkipPathPrefixes []string
}

func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics"},
		SkipPathPrefixes: []string{"/swagger", "/api-docs"},
	}
}

// Profiling tags each request's goroutines with Pyroscope labels
// (controller, route, method, tenant_id) so profiles can be sliced per
// endpoint and per tenant.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig must run after the JWT and tenant middleware,
// otherwise the tenant_id label is empty.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if profilingSkipped(c.Request.URL.Path, cfg) {
			c.Next()
			return
		}

		route := c.FullPath()
		labels := telemetry.HTTPRequestLabels(
			controllerFromRoute(route),
			route,
			c.Request.Method,
			profiledTenantID(c),
		)

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingSkipped(path string, cfg ProfilingConfig) bool {
	for _, skip := range cfg.SkipPaths {
		if path == skip {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// controllerFromRoute derives a resource name from the route pattern:
// "/api/v1/databases/:databaseId/tables" -> "databases".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || versionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "{") {
			continue
		}
		return part
	}
	return ""
}

func versionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// profiledTenantID prefers the JWT claim over the tenant middleware key.
func profiledTenantID(c *gin.Context) string {
	for _, key := range []string{JWTTenantIDKey, TenantIDKey} {
		if v, ok := c.Get(key); ok {
			if id, ok := v.(string); ok && id != "" {
				return id
			}
		}
	}
	return ""
}
