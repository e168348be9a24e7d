// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/device-audit/internal/logging"
	"github.com/canonical/device-audit/internal/monitoring"
	"github.com/canonical/device-audit/internal/tracing"
)

const defaultPageSize uint64 = 100

var (
	ErrInvalidConfig = errors.New("invalid database configuration")
	ErrUnreachable   = errors.New("database is unreachable")
)

var _ DBClientInterface = (*DBClient)(nil)

type txKey struct{}

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	var runner sq.BaseRunner = d.db
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		runner = tx
	}

	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(runner)
}

// WithTx runs fn inside a transaction, statements built from the ctx handed to
// fn join it. The transaction is committed when fn returns nil and rolled
// back otherwise. Nested calls reuse the outer transaction.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) (err error) {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.WithTx")
	defer span.End()

	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.logger.Errorf("failed to rollback transaction: %v", rbErr)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (d *DBClient) Ping(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.Ping")
	defer span.End()

	start := time.Now()
	err := d.pool.Ping(ctx)

	status := "ok"
	available := 1.0
	if err != nil {
		status = "error"
		available = 0
	}

	_ = d.monitor.SetResponseTimeMetric(map[string]string{"route": "db.ping", "status": status}, time.Since(start).Seconds())
	_ = d.monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, available)

	return err
}

func (d *DBClient) Close() {
	if err := d.db.Close(); err != nil {
		d.logger.Errorf("failed to close database handle: %v", err)
	}
	d.pool.Close()
}

// Offset returns the row offset of a 1-based page.
func Offset(pageParam int64, pageSize uint64) uint64 {
	if pageParam < 1 {
		pageParam = 1
	}

	return uint64(pageParam-1) * pageSize
}

func PageSize(sizeParam int64) uint64 {
	if sizeParam < 1 {
		return defaultPageSize
	}

	return uint64(sizeParam)
}

func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: empty DSN", ErrInvalidConfig)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	d := new(DBClient)
	d.pool = pool
	d.db = stdlib.OpenDBFromPool(pool)

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d, nil
}
