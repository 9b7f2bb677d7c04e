package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/holaaposmx/Controdealmacenfrio/pkg/config"
)

// PoolOption ajusta la configuración del pool antes de conectar.
type PoolOption func(*pgxpool.Config)

// WithQueryLogger traza cada consulta en log a nivel debug (el nivel del logger decide si se emite).
func WithQueryLogger(log zerolog.Logger) PoolOption {
	return func(c *pgxpool.Config) {
		c.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   zerologTracer(log),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
}

// NewPool crea el pool de PostgreSQL. DATABASE_URL tiene prioridad sobre DB_HOST, DB_PORT, etc.
func NewPool(ctx context.Context, cfg config.DBConfig, opts ...PoolOption) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "almacen-frio"

	// NUMERIC -> shopspring/decimal (temperaturas) en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	for _, opt := range opts {
		opt(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

func zerologTracer(log zerolog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var ev *zerolog.Event
		switch level {
		case tracelog.LogLevelTrace:
			ev = log.Trace()
		case tracelog.LogLevelDebug:
			ev = log.Debug()
		case tracelog.LogLevelInfo:
			ev = log.Info()
		case tracelog.LogLevelWarn:
			ev = log.Warn()
		default:
			ev = log.Error()
		}
		ev.Fields(data).Msg(msg)
	}
}
