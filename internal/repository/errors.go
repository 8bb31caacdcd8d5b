// Package repository defines error types that are reused across multiple
// repositories.  Uniqueness and CHECK violations are surfaced as sentinels
// so that the service layer can treat them as the only concurrency-conflict
// signal without parsing driver messages.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a UNIQUE key.
var ErrDuplicate = errors.New("duplicate key")

// ErrCheckViolation is returned when an insert violates a CHECK constraint.
var ErrCheckViolation = errors.New("check constraint violated")

// ErrOutOfRange is returned when a value does not fit its column, either a
// string longer than the column or a number outside its precision.
var ErrOutOfRange = errors.New("value out of range")

// MySQL server error numbers.
const (
	mysqlOutOfRange      = 1264
	mysqlDataTooLong     = 1406
	mysqlDupEntry        = 1062
	mysqlCheckConstraint = 3819
)

// translate maps driver errors onto the sentinels above and returns every
// other error unchanged.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return ErrDuplicate
		case mysqlCheckConstraint:
			return ErrCheckViolation
		case mysqlOutOfRange, mysqlDataTooLong:
			return ErrOutOfRange
		}
	}
	return err
}
