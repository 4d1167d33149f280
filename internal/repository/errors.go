package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/venuebook/venuebook/internal/domain"
)

// wrapErr adds operation context to a storage error. An unreachable or
// timed-out backend surfaces as ErrServiceUnavailable so handlers answer
// 503 rather than a generic 500.
func wrapErr(op string, err error) error {
	if storageUnavailable(err) {
		return fmt.Errorf("%w: failed to %s: %v", domain.ErrServiceUnavailable, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// storageUnavailable reports whether the error means the backend could not
// be reached at all, as opposed to rejecting the statement.
func storageUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
