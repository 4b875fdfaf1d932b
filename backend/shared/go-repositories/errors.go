package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgCheckViolation            = "23514"
	pgNotNullViolation          = "23502"
	pgInvalidTextRepresentation = "22P02"
	pgNumericValueOutOfRange    = "22003"
	pgStringDataRightTruncation = "22001"
)

var (
	// ErrUniqueViolation means a uniqueness constraint rejected the write.
	ErrUniqueViolation = errors.New("unique_violation")
	// ErrIntegrityViolation covers FK, CHECK, NOT NULL, malformed input and
	// values that do not fit their column.
	ErrIntegrityViolation = errors.New("integrity_violation")
)

// TranslatePgError maps storage integrity failures onto repository sentinels so
// that services never have to look at SQLSTATE codes. Other errors pass through.
func TranslatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	case pgForeignKeyViolation, pgCheckViolation, pgNotNullViolation, pgInvalidTextRepresentation,
		pgNumericValueOutOfRange, pgStringDataRightTruncation:
		return fmt.Errorf("%w: %s", ErrIntegrityViolation, pgErr.Message)
	}
	return err
}
