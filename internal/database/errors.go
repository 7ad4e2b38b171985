package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/lib/pq"
)

// Postgres error classes that indicate the statement may succeed on retry.
// Class 08 = connection exception, 53 = insufficient resources (e.g. too
// many connections), 57 = operator intervention (e.g. admin shutdown).
var transientPgClasses = map[string]bool{
	"08": true,
	"53": true,
	"57": true,
}

// IsTransient reports whether err is a transient store failure worth
// retrying. Everything else (constraint violations, malformed statements,
// scan errors) is permanent and fails immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientPgClasses[string(pqErr.Code.Class())]
	}
	return false
}
