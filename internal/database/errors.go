package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// IsDuplicate reports whether err is a unique-constraint violation from
// either supported driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	// modernc.org/sqlite reports "constraint failed: UNIQUE constraint failed: ..."
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
