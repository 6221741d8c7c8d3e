// internal/database/errors.go
package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// sqliteForeignKeyMessage is reported by SQLite for every foreign key failure,
// whatever the extended result code.
const sqliteForeignKeyMessage = "FOREIGN KEY constraint failed"

// IsForeignKeyViolation reports whether err comes from a foreign key check.
// Postgres errors arrive translated by gorm; SQLite only translates some
// extended codes, so its message is matched as well.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), sqliteForeignKeyMessage)
}
