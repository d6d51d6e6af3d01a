// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write references rows that do not
// exist or that cannot be removed because other rows depend on them.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNameExists is returned when a unique name (station, train type,
// train) or email is already taken.
var ErrNameExists = errors.New("name already exists")

// MySQL server error numbers the repositories react to.
const (
	mysqlErrDupEntry     = 1062
	mysqlErrNoReferenced = 1452
	mysqlErrRowIsParent  = 1451
	mysqlErrLockWait     = 1205
	mysqlErrDeadlock     = 1213
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateKey(err error) bool { return mysqlErrNumber(err) == mysqlErrDupEntry }

// isLockAbort reports a transaction chosen as a deadlock victim or timed
// out waiting for a row lock held by a concurrent writer.
func isLockAbort(err error) bool {
	n := mysqlErrNumber(err)
	return n == mysqlErrDeadlock || n == mysqlErrLockWait
}

// translateWrite maps constraint violations to the package sentinels.
func translateWrite(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlErrDupEntry:
		return ErrNameExists
	case mysqlErrNoReferenced, mysqlErrRowIsParent:
		return ErrConflict
	}
	return err
}
