package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// labelCapture records the pprof labels visible inside a handler.
type labelCapture map[string]string

func captureHandler(captured labelCapture) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, key := range []string{"controller", "route", "method", "tenant_id"} {
			if v, ok := pprof.Label(ctx, key); ok {
				captured[key] = v
			}
		}
		c.Status(http.StatusOK)
	}
}

func TestProfilingLabelsOnRequest(t *testing.T) {
	captured := labelCapture{}

	router := gin.New()
	router.Use(Profiling())
	router.GET("/api/v1/databases/:databaseId", captureHandler(captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/databases/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "databases", captured["controller"])
	assert.Equal(t, "/api/v1/databases/:databaseId", captured["route"])
	assert.Equal(t, "GET", captured["method"])
	assert.NotContains(t, captured, "tenant_id")
}

func TestProfilingTenantLabel(t *testing.T) {
	captured := labelCapture{}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, "tenant-acme")
		c.Next()
	})
	router.Use(Profiling())
	router.GET("/api/v1/invoices", captureHandler(captured))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, "tenant-acme", captured["tenant_id"])
	assert.Equal(t, "invoices", captured["controller"])
}

func TestProfilingSkipsConfiguredPaths(t *testing.T) {
	cases := []struct {
		name string
		path string
		skip bool
	}{
		{"health exact", "/health", true},
		{"metrics exact", "/metrics", true},
		{"swagger prefix", "/swagger/index.html", true},
		{"api-docs prefix", "/api-docs/spec.json", true},
		{"regular route", "/api/v1/rows", false},
		{"health-like but different", "/healthiness", false},
	}

	cfg := DefaultProfilingConfig()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.skip, profilingSkipped(tc.path, cfg))
		})
	}
}

func TestProfilingDisabled(t *testing.T) {
	captured := labelCapture{}

	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))
	router.GET("/api/v1/rows", captureHandler(captured))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rows", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, captured)
}

func TestControllerFromRoute(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"/api/v1/databases", "databases"},
		{"/api/v1/databases/:databaseId", "databases"},
		{"/api/v1/tables/:tableId/rows", "tables"},
		{"/api/v2/invoices/:id/lines", "invoices"},
		{"/api/invoices", "invoices"},
		{"/dashboards", "dashboards"},
		{"/api/v1", ""},
		{"", ""},
	}

	for _, tc := range cases {
		name := tc.route
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, controllerFromRoute(tc.route))
		})
	}
}

func TestVersionSegment(t *testing.T) {
	assert.True(t, versionSegment("v1"))
	assert.True(t, versionSegment("v12"))
	assert.True(t, versionSegment("V2"))
	assert.False(t, versionSegment("v"))
	assert.False(t, versionSegment("version"))
	assert.False(t, versionSegment("v1a"))
	assert.False(t, versionSegment("invoices"))
}

func TestProfiledTenantID(t *testing.T) {
	newCtx := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		return c
	}

	t.Run("jwt claim wins", func(t *testing.T) {
		c := newCtx()
		c.Set(JWTTenantIDKey, "from-jwt")
		c.Set(TenantIDKey, "from-middleware")
		assert.Equal(t, "from-jwt", profiledTenantID(c))
	})

	t.Run("falls back to tenant middleware", func(t *testing.T) {
		c := newCtx()
		c.Set(TenantIDKey, "from-middleware")
		assert.Equal(t, "from-middleware", profiledTenantID(c))
	})

	t.Run("non-string claim ignored", func(t *testing.T) {
		c := newCtx()
		c.Set(JWTTenantIDKey, 42)
		assert.Empty(t, profiledTenantID(c))
	})

	t.Run("unset", func(t *testing.T) {
		c := newCtx()
		assert.Empty(t, profiledTenantID(c))
	})
}
