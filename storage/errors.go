package storage

import "fmt"

// PersistenceError reports a history snapshot that could not be read or written.
type PersistenceError struct {
	Op   string // "load", "save" or "clear"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s history %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
