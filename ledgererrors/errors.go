// Package ledgererrors holds the sentinel errors Store implementations and
// their callers use to distinguish "not found" from a genuine I/O failure,
// mirroring the teacher's domain/consensus/database.ErrNotFound convention.
package ledgererrors

import "github.com/pkg/errors"

// ErrNotFound is returned by a DBReader.Get/Cursor when the requested key
// or bucket entry does not exist.
var ErrNotFound = errors.New("ledgercore: key not found")

// IsNotFoundError reports whether err is (or wraps) ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
