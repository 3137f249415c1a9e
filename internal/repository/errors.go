package repository

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/protechlab/labdesk/internal/domain"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgNotNullViolation    = "23502"
)

// translate maps driver and gorm errors onto the domain taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var classified *domain.Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError("record", 0)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return domain.ValidationError("referenced record does not exist")
		case pgUniqueViolation:
			return domain.ValidationError("duplicate value for %s", pgErr.ConstraintName)
		case pgNotNullViolation:
			return domain.ValidationError("%s is required", pgErr.ColumnName)
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return domain.ValidationError("referenced record does not exist")
		case sqlite3.ErrConstraintUnique:
			return domain.ValidationError("duplicate value")
		case sqlite3.ErrConstraintNotNull:
			return domain.ValidationError("required field missing")
		}
	}

	return domain.StoreUnavailableError(err)
}

func translateNotFound(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return translate(err)
}

func notFound(entity string, id int64) error {
	return domain.NotFoundError(entity, id)
}

func noOpUpdate() error {
	return domain.NoOpUpdateError()
}
