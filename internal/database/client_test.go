package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"
	"time"

	"github.com/lib/pq"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "bad conn", err: driver.ErrBadConn, want: true},
		{name: "wrapped refused", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), want: true},
		{name: "wrapped reset", err: fmt.Errorf("read: %w", syscall.ECONNRESET), want: true},
		{name: "net timeout", err: timeoutErr{}, want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "pg connection failure", err: &pq.Error{Code: "08006"}, want: true},
		{name: "pg too many connections", err: &pq.Error{Code: "53300"}, want: true},
		{name: "pg admin shutdown", err: &pq.Error{Code: "57P01"}, want: true},
		{name: "pg unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "pg syntax error", err: &pq.Error{Code: "42601"}, want: false},
		{name: "no rows", err: sql.ErrNoRows, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestWithRetryExhaustsTransientFailures(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return driver.ErrBadConn
	})
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected the last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryRecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		if calls < 2 {
			return fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestWithRetryPermanentFailsImmediately(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetryConfig(), func() error {
		calls++
		return &pq.Error{Code: "23505"}
	})
	if err == nil {
		t.Fatal("expected the permanent error to surface")
	}
	if calls != 1 {
		t.Errorf("permanent failures must not retry, got %d attempts", calls)
	}
}

func TestWithRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, RetryConfig{MaxAttempts: 10, InitialInterval: 50 * time.Millisecond, MaxInterval: time.Second}, func() error {
		calls++
		cancel()
		return driver.ErrBadConn
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt before cancellation, got %d", calls)
	}
}
