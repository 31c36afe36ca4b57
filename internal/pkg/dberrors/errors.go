package dberrors

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError

	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
}

// IsCheckViolation reports a CHECK constraint failure (23514), e.g. seats_available >= 0.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// IsTransient reports whether err is a store failure the caller may retry:
// deadlines, dropped connections, serialization conflicts and server shutdowns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "57P01", "57P03", "53300":
			return true
		}
	}
	return false
}

// Wrap annotates a repository error. Transient failures are turned into
// apperrors.ErrUnavailable so the API answers 503.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return apperrors.NewUnavailableError("storage temporarily unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
