package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig bounds the retry behaviour for transient store failures.
type RetryConfig struct {
	MaxAttempts     int           // total attempts, including the first
	InitialInterval time.Duration // first backoff delay
	MaxInterval     time.Duration // cap on the doubling delay
}

// DefaultRetryConfig retries three times with a delay doubling up to 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Client executes parameterized statements against the relational store,
// retrying transient failures with bounded exponential backoff. Callers
// must never concatenate user input into query text; values travel as
// placeholder arguments only.
type Client struct {
	db  *sql.DB
	cfg RetryConfig
}

// NewClient wraps an open connection pool.
func NewClient(db *sql.DB, cfg RetryConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	return &Client{db: db, cfg: cfg}
}

// ExecContext runs a write statement with retry on transient failures.
func (c *Client) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := withRetry(ctx, c.cfg, func() error {
		var execErr error
		res, execErr = c.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

// QueryContext runs a multi-row query with retry on transient failures.
func (c *Client) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := withRetry(ctx, c.cfg, func() error {
		var queryErr error
		rows, queryErr = c.db.QueryContext(ctx, query, args...)
		return queryErr
	})
	return rows, err
}

// QueryRow runs a single-row query and scans it via the provided
// function. The whole query+scan is retried on transient failures, since
// *sql.Row surfaces connection errors only at Scan time. sql.ErrNoRows is
// permanent and returned as-is.
func (c *Client) QueryRow(ctx context.Context, scan func(*sql.Row) error, query string, args ...any) error {
	return withRetry(ctx, c.cfg, func() error {
		return scan(c.db.QueryRowContext(ctx, query, args...))
	})
}

// withRetry runs op, retrying transient failures with exponential backoff
// until the attempt budget is spent or the context expires. Permanent
// failures return immediately.
func withRetry(ctx context.Context, cfg RetryConfig, op func() error) error {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = cfg.InitialInterval
	backoffCfg.MaxInterval = cfg.MaxInterval

	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			return err
		}
		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			sleep = cfg.MaxInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}
