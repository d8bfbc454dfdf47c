package db

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const defaultHealthCheckPeriod = 30 * time.Second

type NewDBPoolParams struct {
	ConnString     string
	MaxConns       int32
	MinConns       int32
	TracingEnabled bool
}

// NewDBPool opens the pool and pings the database once.
func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(params.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.MaxConns > 0 {
		poolConfig.MaxConns = params.MaxConns
	}
	if params.MinConns > 0 && params.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = params.MinConns
	}
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db %s/%s: %w", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Database, err)
	}
	log.Debugf("db pool ready: %s/%s, max conns %d",
		poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Database, poolConfig.MaxConns)

	return pool, nil
}
