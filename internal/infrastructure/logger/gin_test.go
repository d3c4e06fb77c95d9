package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// serveLogged runs a single request through a gin engine wrapped in
// GinMiddleware and returns the recorded "HTTP Request" entry, if any.
func serveLogged(t *testing.T, minLevel zapcore.Level, setup func(*gin.Engine), method, target string, header http.Header) (*httptest.ResponseRecorder, *observer.LoggedEntry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(minLevel)
	router := gin.New()
	if setup != nil {
		setup(router)
	}
	router.Use(GinMiddleware(zap.New(core)))

	switch method {
	case http.MethodPost:
		router.POST("/api/v1/databases/:database_id/rows", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"id": "row-1"})
		})
	default:
		router.GET("/api/v1/databases", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"items": []string{}})
		})
		router.GET("/bad", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		})
		router.GET("/boom", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		})
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	router.ServeHTTP(w, req)

	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			e := entry
			return w, &e
		}
	}
	return w, nil
}

func TestGinMiddlewareLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		status   int
		minLevel zapcore.Level
		want     zapcore.Level
	}{
		{"success logs info", "/api/v1/databases", http.StatusOK, zapcore.InfoLevel, zapcore.InfoLevel},
		{"client error logs warn", "/bad", http.StatusBadRequest, zapcore.WarnLevel, zapcore.WarnLevel},
		{"server error logs error", "/boom", http.StatusInternalServerError, zapcore.ErrorLevel, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, entry := serveLogged(t, tt.minLevel, nil, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, entry, "request should be logged")
			assert.Equal(t, tt.want, entry.Level)
		})
	}
}

func TestGinMiddlewareRequestID(t *testing.T) {
	setup := func(r *gin.Engine) {
		r.Use(func(c *gin.Context) {
			c.Set("request_id", "req-gin-7")
			c.Next()
		})
	}

	_, entry := serveLogged(t, zapcore.InfoLevel, setup, http.MethodGet, "/api/v1/databases", nil)
	require.NotNil(t, entry)

	found := false
	for _, field := range entry.Context {
		if field.Key == "request_id" {
			found = true
			assert.Equal(t, "req-gin-7", field.String)
		}
	}
	assert.True(t, found, "request_id should be in log fields")
}

func TestGinMiddlewareQueryString(t *testing.T) {
	_, entry := serveLogged(t, zapcore.InfoLevel, nil, http.MethodGet, "/api/v1/databases?search=accounting&page=2", nil)
	require.NotNil(t, entry)

	found := false
	for _, field := range entry.Context {
		if field.Key == "query" {
			found = true
			assert.Contains(t, field.String, "search=accounting")
		}
	}
	assert.True(t, found, "query should be in log fields")
}

func TestGinMiddlewareRequestFields(t *testing.T) {
	header := http.Header{"User-Agent": []string{"GridBase-Client/2.1"}}
	w, entry := serveLogged(t, zapcore.InfoLevel, nil, http.MethodPost, "/api/v1/databases/db-1/rows", header)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, entry)

	keys := make(map[string]struct{}, len(entry.Context))
	for _, field := range entry.Context {
		keys[field.Key] = struct{}{}
	}
	for _, want := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, keys, want)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("cell codec blew up")
	})

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/panic", nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() { router.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)

		var got *zap.Logger
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/ping", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.String(http.StatusOK, "pong")
		})

		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/ping", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		assert.NotNil(t, got)
	})

	t.Run("falls back to no-op without middleware", func(t *testing.T) {
		var got *zap.Logger
		router := gin.New()
		router.GET("/ping", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.String(http.StatusOK, "pong")
		})

		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, "/ping", nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("fallback logger works") })
	})
}
