package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrDocNotFound   = errors.New("db: document not found")
	ErrIndexNotFound = errors.New("db: index not found")
)

// Op constants name the failing backend operation for error context.
const (
	OpPing        = "PING"
	OpGet         = "GET"
	OpSet         = "SET"
	OpDel         = "DEL"
	OpSearch      = "_search"
	OpDeleteDoc   = "_doc.delete"
	OpIndexExists = "indices.exists"
	OpDeleteIndex = "indices.delete"
	OpQuery       = "SELECT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
