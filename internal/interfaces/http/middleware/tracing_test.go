package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans swaps the global tracer provider for one backed by an
// in-memory recorder, restoring the original on cleanup. otelgin uses the
// global provider, so this is how middleware spans become observable.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
		_ = provider.Shutdown(t.Context())
	})

	return recorder
}

func spanAttrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes()))
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func traceRequest(t *testing.T, setup func(*gin.Engine), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	setup(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTracingDisabled(t *testing.T) {
	recorder := recordSpans(t)

	w := traceRequest(t, func(r *gin.Engine) {
		r.Use(TracingWithConfig(TracingConfig{Enabled: false}))
		r.GET("/rows", func(c *gin.Context) { c.Status(http.StatusOK) })
	}, httptest.NewRequest(http.MethodGet, "/rows", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Ended())
}

func TestTracingCreatesRouteSpan(t *testing.T) {
	recorder := recordSpans(t)

	w := traceRequest(t, func(r *gin.Engine) {
		r.Use(Tracing())
		r.GET("/api/v1/tables/:tableId/rows", func(c *gin.Context) { c.Status(http.StatusOK) })
	}, httptest.NewRequest(http.MethodGet, "/api/v1/tables/7/rows", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/tables/:tableId/rows")
}

func TestTracingIdentityAttributes(t *testing.T) {
	jwtTenant := uuid.New().String()

	t.Run("jwt claims and request id", func(t *testing.T) {
		recorder := recordSpans(t)

		req := httptest.NewRequest(http.MethodGet, "/rows", nil)
		traceRequest(t, func(r *gin.Engine) {
			r.Use(func(c *gin.Context) {
				c.Set("request_id", "req-0042")
				c.Set(JWTTenantIDKey, jwtTenant)
				c.Set(JWTUserIDKey, "user-7")
				c.Next()
			})
			r.Use(Tracing())
			r.GET("/rows", func(c *gin.Context) { c.Status(http.StatusOK) })
		}, req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spanAttrMap(spans[0])
		assert.Equal(t, "req-0042", attrs["request_id"].AsString())
		assert.Equal(t, jwtTenant, attrs["tenant_id"].AsString())
		assert.Equal(t, "user-7", attrs["user_id"].AsString())
	})

	t.Run("valid tenant header accepted", func(t *testing.T) {
		recorder := recordSpans(t)
		headerTenant := uuid.New().String()

		req := httptest.NewRequest(http.MethodGet, "/rows", nil)
		req.Header.Set(TenantHeaderKey, headerTenant)
		traceRequest(t, func(r *gin.Engine) {
			r.Use(Tracing())
			r.GET("/rows", func(c *gin.Context) { c.Status(http.StatusOK) })
		}, req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, headerTenant, spanAttrMap(spans[0])["tenant_id"].AsString())
	})

	t.Run("malformed tenant header dropped", func(t *testing.T) {
		recorder := recordSpans(t)

		req := httptest.NewRequest(http.MethodGet, "/rows", nil)
		req.Header.Set(TenantHeaderKey, "'; DROP TABLE tenants;--")
		traceRequest(t, func(r *gin.Engine) {
			r.Use(Tracing())
			r.GET("/rows", func(c *gin.Context) { c.Status(http.StatusOK) })
		}, req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.NotContains(t, spanAttrMap(spans[0]), attribute.Key("tenant_id"))
	})
}

func TestSpanErrorMarker(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		wantError   bool
		wantMessage string
	}{
		{"ok", http.StatusOK, false, ""},
		{"created", http.StatusCreated, false, ""},
		{"bad request", http.StatusBadRequest, true, "Client Error"},
		{"unauthorized", http.StatusUnauthorized, true, "Unauthorized"},
		{"forbidden", http.StatusForbidden, true, "Forbidden"},
		{"not found", http.StatusNotFound, true, "Not Found"},
		{"conflict", http.StatusConflict, true, "Client Error"},
		{"internal error", http.StatusInternalServerError, true, "Internal Server Error"},
		{"bad gateway", http.StatusBadGateway, true, "Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := recordSpans(t)

			traceRequest(t, func(r *gin.Engine) {
				r.Use(Tracing())
				r.Use(SpanErrorMarker())
				r.GET("/rows", func(c *gin.Context) { c.Status(tc.status) })
			}, httptest.NewRequest(http.MethodGet, "/rows", nil))

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			if tc.wantError {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
				assert.Equal(t, tc.wantMessage, spans[0].Status().Description)
				attrs := spanAttrMap(spans[0])
				assert.Equal(t, int64(tc.status), attrs["http.status_code"].AsInt64())
			} else {
				assert.NotEqual(t, codes.Error, spans[0].Status().Code)
			}
		})
	}
}

func TestTracedRequestID(t *testing.T) {
	newCtx := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/rows", nil)
		if header != "" {
			c.Request.Header.Set("X-Request-ID", header)
		}
		return c
	}

	t.Run("context value wins over header", func(t *testing.T) {
		c := newCtx("from-header")
		c.Set("request_id", "from-context")
		assert.Equal(t, "from-context", tracedRequestID(c))
	})

	t.Run("header fallback", func(t *testing.T) {
		assert.Equal(t, "from-header", tracedRequestID(newCtx("from-header")))
	})

	t.Run("oversized header truncated", func(t *testing.T) {
		long := strings.Repeat("x", MaxRequestIDLength+50)
		got := tracedRequestID(newCtx(long))
		assert.Len(t, got, MaxRequestIDLength)
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, tracedRequestID(newCtx("")))
	})
}

func TestTracedTenantID(t *testing.T) {
	validUUID := uuid.New().String()

	newCtx := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/rows", nil)
		if header != "" {
			c.Request.Header.Set(TenantHeaderKey, header)
		}
		return c
	}

	t.Run("jwt claim wins", func(t *testing.T) {
		c := newCtx(validUUID)
		c.Set(JWTTenantIDKey, "trusted-tenant")
		assert.Equal(t, "trusted-tenant", tracedTenantID(c))
	})

	t.Run("header must be canonical uuid", func(t *testing.T) {
		assert.Equal(t, validUUID, tracedTenantID(newCtx(validUUID)))
		assert.Empty(t, tracedTenantID(newCtx("not-a-uuid")))
		assert.Empty(t, tracedTenantID(newCtx(strings.ReplaceAll(validUUID, "-", ""))))
	})
}

func TestContextString(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("str", "value")
	c.Set("num", 42)

	assert.Equal(t, "value", contextString(c, "str"))
	assert.Empty(t, contextString(c, "num"))
	assert.Empty(t, contextString(c, "missing"))
}
