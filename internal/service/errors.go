package service

import (
	"context"
	"errors"
	"net/http"

	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgLockNotAvailable is raised when lock_timeout expires on a row lock.
const pgLockNotAvailable = "55P03"

func isClientError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError
}

// lockError classifies a failed wallet lock. Timeouts and cancellations while
// waiting map to SYS_002; anything else is a database error.
func lockError(err error) *apperror.AppError {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.ErrLockTimeout(err)
	case errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable:
		return apperror.ErrLockTimeout(err)
	}
	return apperror.ErrDatabaseError(err)
}
