package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func newNoopSpanContext(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tp := noop.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Tracer("gridbase-test").Start(context.Background(), "row-create")
}

func TestLoggerContextRoundTrip(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	t.Run("stored logger is retrievable", func(t *testing.T) {
		ctx := WithContext(context.Background(), log)
		assert.NotNil(t, FromContext(ctx))
	})

	t.Run("missing logger yields usable no-op", func(t *testing.T) {
		fallback := FromContext(context.Background())
		require.NotNil(t, fallback)
		assert.NotPanics(t, func() {
			fallback.Info("no-op message")
			fallback.With(zap.String("table", "grid_rows")).Error("still no-op")
		})
	})

	t.Run("non-logger value yields no-op", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, 42)
		fallback := FromContext(ctx)
		require.NotNil(t, fallback)
		assert.NotPanics(t, func() { fallback.Warn("wrong type") })
	})
}

func TestContextEnrichment(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	tests := []struct {
		name   string
		enrich func(context.Context) (context.Context, *zap.Logger)
		get    func(context.Context) string
		value  string
	}{
		{
			name: "request id",
			enrich: func(ctx context.Context) (context.Context, *zap.Logger) {
				return WithRequestID(ctx, log, "req-001")
			},
			get:   GetRequestID,
			value: "req-001",
		},
		{
			name: "tenant id",
			enrich: func(ctx context.Context) (context.Context, *zap.Logger) {
				return WithTenantID(ctx, log, "tenant-acme")
			},
			get:   GetTenantID,
			value: "tenant-acme",
		},
		{
			name: "user id",
			enrich: func(ctx context.Context) (context.Context, *zap.Logger) {
				return WithUserID(ctx, log, "user-ops")
			},
			get:   GetUserID,
			value: "user-ops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, enriched := tt.enrich(context.Background())
			assert.Equal(t, tt.value, tt.get(ctx))
			assert.NotNil(t, enriched)
		})
	}

	t.Run("absent values are empty", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetRequestID(ctx))
		assert.Empty(t, GetTenantID(ctx))
		assert.Empty(t, GetUserID(ctx))
	})

	t.Run("chained enrichment keeps all values", func(t *testing.T) {
		ctx := context.Background()
		ctx, chained := WithRequestID(ctx, log, "req-chain")
		ctx, chained = WithTenantID(ctx, chained, "tenant-chain")
		ctx, chained = WithUserID(ctx, chained, "user-chain")

		assert.Equal(t, "req-chain", GetRequestID(ctx))
		assert.Equal(t, "tenant-chain", GetTenantID(ctx))
		assert.Equal(t, "user-chain", GetUserID(ctx))
		assert.NotEqual(t, log, chained)
	})

	t.Run("second request id overrides the first", func(t *testing.T) {
		ctx, _ := WithRequestID(context.Background(), log, "first")
		ctx, _ = WithRequestID(ctx, log, "second")
		assert.Equal(t, "second", GetRequestID(ctx))
	})
}

func TestContextKeysAreDistinct(t *testing.T) {
	keys := []any{LoggerKey, RequestIDKey, TenantIDKey, UserIDKey}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			assert.NotEqual(t, keys[i], keys[j])
		}
	}
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("no span means empty ids", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))
	})

	t.Run("noop span has invalid context", func(t *testing.T) {
		ctx, span := newNoopSpanContext(t)
		defer span.End()

		assert.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))
	})

	t.Run("invalid span returns original logger", func(t *testing.T) {
		ctx, span := newNoopSpanContext(t)
		defer span.End()

		base := zap.NewNop()
		assert.Equal(t, base, WithTraceContext(ctx, base))
	})

	t.Run("no span returns original logger", func(t *testing.T) {
		base := zap.NewNop()
		assert.Equal(t, base, WithTraceContext(context.Background(), base))
	})
}

func TestContextLoggerConstruction(t *testing.T) {
	log, err := NewForEnvironment("development")
	require.NoError(t, err)

	t.Run("L without logger in context", func(t *testing.T) {
		cl := L(context.Background())
		require.NotNil(t, cl)
		assert.NotNil(t, cl.ctx)
		assert.NotNil(t, cl.logger)
	})

	t.Run("L picks up logger from context", func(t *testing.T) {
		ctx := WithContext(context.Background(), log)
		cl := L(ctx)
		require.NotNil(t, cl)
		assert.NotNil(t, cl.logger)
	})

	t.Run("WithLogger uses the given logger", func(t *testing.T) {
		cl := WithLogger(context.Background(), log)
		require.NotNil(t, cl)
		assert.Equal(t, log, cl.logger)
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		assert.NotPanics(t, func() { cl.Info("nil-safe") })
	})
}

func TestContextLoggerLogging(t *testing.T) {
	t.Run("all levels are callable", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		assert.NotPanics(t, func() {
			cl.Debug("d")
			cl.Info("i")
			cl.Warn("w")
			cl.Error("e")
		})
	})

	t.Run("With derives a new logger", func(t *testing.T) {
		base, _ := newBufferedLogger()
		ctx := context.Background()
		cl := WithLogger(ctx, base)

		child := cl.With(zap.String("database", "accounting"))
		require.NotNil(t, child)
		assert.Equal(t, ctx, child.ctx)
		assert.NotEqual(t, base, child.logger)
	})

	t.Run("With chains", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop()).
			With(zap.String("table", "invoices")).
			With(zap.Int("row_count", 3))
		assert.NotPanics(t, func() { cl.Info("chained") })
	})

	t.Run("Zap and Sugar accessors", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		require.NotNil(t, cl.Zap())
		require.NotNil(t, cl.Sugar())
		assert.NotPanics(t, func() {
			cl.Zap().Info("raw")
			cl.Sugar().Infof("row %d", 7)
		})
	})
}

func TestContextLoggerFieldEnrichment(t *testing.T) {
	t.Run("context fields appear in output", func(t *testing.T) {
		base, buf := newBufferedLogger()

		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, base, "req-inv")
		ctx, _ = WithTenantID(ctx, base, "tenant-inv")
		ctx, _ = WithUserID(ctx, base, "user-inv")
		ctx = WithContext(ctx, base)

		L(ctx).Info("invoice created", zap.String("series", "FACT"))

		out := buf.String()
		assert.Contains(t, out, `"request_id":"req-inv"`)
		assert.Contains(t, out, `"tenant_id":"tenant-inv"`)
		assert.Contains(t, out, `"user_id":"user-inv"`)
		assert.Contains(t, out, `"series":"FACT"`)
		assert.Contains(t, out, `"msg":"invoice created"`)
	})

	t.Run("raw context values are picked up", func(t *testing.T) {
		base, buf := newBufferedLogger()

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-raw")
		ctx = context.WithValue(ctx, TenantIDKey, "tenant-raw")
		ctx = context.WithValue(ctx, UserIDKey, "user-raw")

		WithLogger(ctx, base).Info("settings updated")

		out := buf.String()
		assert.Contains(t, out, `"request_id":"req-raw"`)
		assert.Contains(t, out, `"tenant_id":"tenant-raw"`)
		assert.Contains(t, out, `"user_id":"user-raw"`)
	})

	t.Run("empty fields are omitted", func(t *testing.T) {
		base, buf := newBufferedLogger()

		WithLogger(context.Background(), base).Info("bare")

		out := buf.String()
		assert.Contains(t, out, `"msg":"bare"`)
		assert.NotContains(t, out, `"request_id":""`)
		assert.NotContains(t, out, `"tenant_id":""`)
		assert.NotContains(t, out, `"user_id":""`)
	})
}
