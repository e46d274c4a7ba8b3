package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nexus-club/site-api/internal/domain/newbie"
)

// translateErr maps driver errors onto the domain's closed failure set so no
// component above the repo ever inspects pgconn shapes.
//
//	23505            -> ErrDuplicateEmail (unique constraint on email)
//	42P01 / 42703    -> ErrSchemaMismatch (table or column missing)
//	class 08*, dial/
//	timeout errors   -> ErrUnavailable (transient, caller may retry)
//
// Anything else passes through unchanged and is reported as an internal error.
func translateErr(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return newbie.ErrDuplicateEmail
		case pgErr.Code == "42P01", pgErr.Code == "42703":
			return newbie.ErrSchemaMismatch
		case strings.HasPrefix(pgErr.Code, "08"):
			return newbie.ErrUnavailable
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newbie.ErrUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return newbie.ErrUnavailable
	}

	// pool acquire and dial failures do not always unwrap to a net.Error
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection") || strings.Contains(msg, "connect") {
		return newbie.ErrUnavailable
	}

	return err
}
