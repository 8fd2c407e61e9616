// Package database opens the Postgres pool used by the postgres store backend.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultConfig sizes the pool for one small web instance. Each registration
// holds a connection for a single INSERT or COUNT.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Pool is a *sql.DB over the pgx stdlib driver.
type Pool struct {
	db *sql.DB
}

// New opens the pool, pings it and, when reg is non-nil, exports the
// database/sql pool stats as registro_db_* metrics.
func New(ctx context.Context, cfg Config, reg prometheus.Registerer) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL not configured")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if reg != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(db, "registro")); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}
	return &Pool{db: db}, nil
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health pings the database; it backs the "postgres" readiness check.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("database not configured")
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
