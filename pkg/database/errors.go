package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// UniqueViolation reports a unique constraint failure and the constraint name.
func UniqueViolation(err error) (string, bool) {
	return pgError(err, codeUniqueViolation)
}

// ForeignKeyViolation reports a foreign key failure and the constraint name.
func ForeignKeyViolation(err error) (string, bool) {
	return pgError(err, codeForeignKeyViolation)
}

func pgError(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}
