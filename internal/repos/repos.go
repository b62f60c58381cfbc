package repos

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a unique-index violation. The
// postgres driver surfaces SQLSTATE 23505; gorm's TranslateError mode and
// the sqlite driver used in tests surface gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func orDefault(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
