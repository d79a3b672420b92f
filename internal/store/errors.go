package store

import (
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"gorm.io/gorm"
)

// Postgres error codes we translate at the boundary.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// pgErrorCode extracts the SQLSTATE from either postgres driver, pgx
// (what gorm's driver uses) or lib/pq.
func pgErrorCode(err error) string {
	var pgxErr *pgconn.PgError

	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}

	var pqErr *pq.Error

	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// translate converts raw store errors into the closed taxonomy. Raw
// diagnostics are logged here and never reach a client.
func translate(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound(notFoundMessage)
	}

	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return apperrors.NewConflict("Resource already exists")
	case pgForeignKeyViolation:
		return apperrors.NewValidation("Referenced resource does not exist", nil)
	case pgNotNullViolation:
		return apperrors.NewValidation("A required field is missing", nil)
	case pgCheckViolation:
		return apperrors.NewValidation("A field has an invalid value", nil)
	}

	log.Printf("Unrecognized store error: %v", err)

	return apperrors.NewDatabase(err)
}
