package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories care about
const (
	pqCodeUniqueViolation      = "23505"
	pqCodeForeignKeyViolation  = "23503"
	pqCodeSerializationFailure = "40001"
	pqCodeDeadlockDetected     = "40P01"
	pqCodeLockNotAvailable     = "55P03"
)

// TranslateError marks driver errors with the matching sentinel so callers
// can branch on ierr helpers instead of pq internals.
func TranslateError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithMessage(msg).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqCodeSerializationFailure, pqCodeDeadlockDetected, pqCodeLockNotAvailable:
			return ierr.WithError(err).
				WithMessage(msg).
				WithHint("The request conflicted with a concurrent update, please retry").
				WithReportableDetails(map[string]any{"sqlstate": string(pqErr.Code)}).
				Mark(ierr.ErrConcurrencyConflict)
		case pqCodeUniqueViolation:
			return ierr.WithError(err).
				WithMessage(msg).
				WithHint("A record with the same identifiers already exists").
				WithReportableDetails(map[string]any{"constraint": pqErr.Constraint}).
				Mark(ierr.ErrAlreadyExists)
		case pqCodeForeignKeyViolation:
			return ierr.WithError(err).
				WithMessage(msg).
				WithHint("A referenced record does not exist").
				WithReportableDetails(map[string]any{"constraint": pqErr.Constraint}).
				Mark(ierr.ErrValidation)
		}
	}

	return ierr.WithError(err).
		WithMessage(msg).
		Mark(ierr.ErrDatabase)
}
