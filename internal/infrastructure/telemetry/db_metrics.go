package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig controls query and connection pool metrics collection.
type DBMetricsConfig struct {
	Enabled bool
	// SlowQueryThreshold marks queries counted in db_slow_query_total.
	SlowQueryThreshold time.Duration
	// PoolStatsInterval is the sampling period for sql.DB pool stats.
	PoolStatsInterval time.Duration
}

func (cfg DBMetricsConfig) withDefaults() DBMetricsConfig {
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval == 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}
	return cfg
}

// DefaultDBMetricsConfig returns the enabled configuration with standard thresholds.
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true}.withDefaults()
}

// DBMetrics records query throughput, latency and connection pool gauges.
// The metric names are stable identifiers consumed by dashboards; changing
// them breaks existing panels.
type DBMetrics struct {
	queryTotal      *Counter   // db_query_total
	queryErrorTotal *Counter   // db_query_error_total
	queryDuration   *Histogram // db_query_duration_seconds
	slowQueryTotal  *Counter   // db_slow_query_total
	poolConns       *Gauge     // db_pool_connections, labelled by state
	poolConnsMax    *Gauge     // db_pool_connections_max

	config DBMetricsConfig
	logger *zap.Logger

	mu    sync.RWMutex
	sqlDB *sql.DB

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBMetrics creates the database metric instruments on the given meter.
func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &DBMetrics{
		config: cfg.withDefaults(),
		logger: logger,
		stopCh: make(chan struct{}),
	}

	var err error
	if m.queryTotal, err = NewCounter(meter,
		"db_query_total", "Database queries by operation type", "{query}"); err != nil {
		return nil, fmt.Errorf("create db_query_total: %w", err)
	}
	if m.queryErrorTotal, err = NewCounter(meter,
		"db_query_error_total", "Failed database queries by operation type", "{query}"); err != nil {
		return nil, fmt.Errorf("create db_query_error_total: %w", err)
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, fmt.Errorf("create db_query_duration_seconds: %w", err)
	}
	if m.slowQueryTotal, err = NewCounter(meter,
		"db_slow_query_total", "Queries slower than the configured threshold", "{query}"); err != nil {
		return nil, fmt.Errorf("create db_slow_query_total: %w", err)
	}
	if m.poolConns, err = NewGauge(meter,
		"db_pool_connections", "Connections in the pool by state", "{connection}"); err != nil {
		return nil, fmt.Errorf("create db_pool_connections: %w", err)
	}
	if m.poolConnsMax, err = NewGauge(meter,
		"db_pool_connections_max", "Maximum open connections in the pool", "{connection}"); err != nil {
		return nil, fmt.Errorf("create db_pool_connections_max: %w", err)
	}

	return m, nil
}

// SetSQLDB provides the sql.DB whose pool stats are sampled. Must be called
// before StartPoolStatsCollection.
func (m *DBMetrics) SetSQLDB(sqlDB *sql.DB) {
	m.mu.Lock()
	m.sqlDB = sqlDB
	m.mu.Unlock()
}

// StartPoolStatsCollection launches the background pool stats sampler.
// Stop terminates it.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		m.logger.Warn("Pool stats collection skipped: sql.DB not set")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.config.PoolStatsInterval)
		defer ticker.Stop()

		m.samplePoolStats(ctx)
		for {
			select {
			case <-ticker.C:
				m.samplePoolStats(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	m.logger.Info("Started connection pool stats collection",
		zap.Duration("interval", m.config.PoolStatsInterval))
}

func (m *DBMetrics) samplePoolStats(ctx context.Context) {
	m.mu.RLock()
	sqlDB := m.sqlDB
	m.mu.RUnlock()
	if sqlDB == nil {
		return
	}

	stats := sqlDB.Stats()
	m.poolConnsMax.Record(ctx, int64(stats.MaxOpenConnections))
	// OpenConnections = Idle + InUse; WaitCount is cumulative, not a state.
	m.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConns.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop terminates the pool stats sampler. Safe to call multiple times.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		m.logger.Debug("Database metrics stopped")
	})
}

// RecordQuery records count, latency and error metrics for one query.
// gorm.ErrRecordNotFound is an expected lookup outcome, not an error.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	op := AttrDBOperation.String(operation)

	m.queryTotal.Inc(ctx, op)
	m.queryDuration.RecordDuration(ctx, duration, op)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		m.queryErrorTotal.Inc(ctx, op)
	}
	if duration > m.config.SlowQueryThreshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin is a gorm plugin that feeds DBMetrics from query callbacks.
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

// NewDBMetricsPlugin wraps metrics in a gorm plugin.
func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, logger: logger}
}

// Name implements gorm.Plugin.
func (p *DBMetricsPlugin) Name() string { return "db_metrics" }

// Initialize registers timing callbacks around every gorm operation type.
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("db_metrics:start_create", markMetricsStart),
		cb.Query().Before("gorm:query").Register("db_metrics:start_query", markMetricsStart),
		cb.Update().Before("gorm:update").Register("db_metrics:start_update", markMetricsStart),
		cb.Delete().Before("gorm:delete").Register("db_metrics:start_delete", markMetricsStart),
		cb.Row().Before("gorm:row").Register("db_metrics:start_row", markMetricsStart),
		cb.Raw().Before("gorm:raw").Register("db_metrics:start_raw", markMetricsStart),

		cb.Create().After("gorm:create").Register("db_metrics:record_create", p.recordAs("INSERT")),
		cb.Query().After("gorm:query").Register("db_metrics:record_query", p.recordAs("SELECT")),
		cb.Update().After("gorm:update").Register("db_metrics:record_update", p.recordAs("UPDATE")),
		cb.Delete().After("gorm:delete").Register("db_metrics:record_delete", p.recordAs("DELETE")),
		cb.Row().After("gorm:row").Register("db_metrics:record_row", p.recordBySQL),
		cb.Raw().After("gorm:raw").Register("db_metrics:record_raw", p.recordBySQL),
	)
	if err != nil {
		return fmt.Errorf("register db metrics callbacks: %w", err)
	}

	p.logger.Info("Database metrics plugin initialized")
	return nil
}

// recordAs returns an after-callback recording the operation under a fixed
// SQL verb.
func (p *DBMetricsPlugin) recordAs(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		p.record(db, operation)
	}
}

// recordBySQL handles Row/Raw callbacks where the verb must be sniffed from
// the statement text.
func (p *DBMetricsPlugin) recordBySQL(db *gorm.DB) {
	p.record(db, sqlVerb(db.Statement.SQL.String()))
}

func (p *DBMetricsPlugin) record(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var duration time.Duration
	if start, ok := ctx.Value(dbMetricsStartKey).(time.Time); ok {
		duration = time.Since(start)
	}

	p.metrics.RecordQuery(ctx, operation, db.Statement.Table, duration, db.Error)
}

func markMetricsStart(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, dbMetricsStartKey, time.Now())
}

// sqlVerb sniffs the operation type from raw SQL.
func sqlVerb(sql string) string {
	switch verb := strings.ToUpper(firstWord(sql)); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	default:
		return "OTHER"
	}
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type dbMetricsContextKey struct{}

var dbMetricsStartKey dbMetricsContextKey

// RegisterDBMetrics wires query and pool metrics into a gorm DB. It returns
// the DBMetrics for lifecycle management (call Stop on shutdown), or nil
// when metrics are disabled.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}
	if meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("MeterProvider not available, skipping database metrics")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics.SetSQLDB(sqlDB)

	if err := db.Use(NewDBMetricsPlugin(metrics, logger)); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", cfg.PoolStatsInterval),
	)
	return metrics, nil
}
