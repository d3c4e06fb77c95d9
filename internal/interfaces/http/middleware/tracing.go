package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request ID taken from inbound headers so a
// hostile client cannot bloat span attributes.
const MaxRequestIDLength = 128

// TracingConfig configures the HTTP tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "gridbase-backend",
		Enabled:     true,
	}
}

// Tracing traces every request via otelgin with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so each request gets a span named
// "METHOD route_pattern", then enriches the span with request_id,
// tenant_id and user_id once upstream middleware has resolved them.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		otelMiddleware(c)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(requestSpanAttributes(c)...)
		}
	}
}

// requestSpanAttributes collects the identity attributes available on the
// request. Header-sourced values are validated before they reach the span.
func requestSpanAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if requestID := tracedRequestID(c); requestID != "" {
		attrs = append(attrs, attribute.String("request_id", requestID))
	}
	if tenantID := tracedTenantID(c); tenantID != "" {
		attrs = append(attrs, attribute.String("tenant_id", tenantID))
	}
	if userID := contextString(c, JWTUserIDKey); userID != "" {
		attrs = append(attrs, attribute.String("user_id", userID))
	}
	return attrs
}

func tracedRequestID(c *gin.Context) string {
	if id := contextString(c, "request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// tracedTenantID prefers the JWT claim; the header fallback only accepts
// canonical UUIDs so unauthenticated clients cannot inject arbitrary trace
// data.
func tracedTenantID(c *gin.Context) string {
	if id := contextString(c, JWTTenantIDKey); id != "" {
		return id
	}
	headerID := c.GetHeader(TenantHeaderKey)
	if len(headerID) == 36 {
		if _, err := uuid.Parse(headerID); err == nil {
			return headerID
		}
	}
	return ""
}

func contextString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SpanErrorMarker marks the request span as failed for 4xx/5xx responses.
// Place it after the Tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		span.SetStatus(codes.Error, statusMessage(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

func statusMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}
