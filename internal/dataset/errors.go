package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrFileUnreadable = errors.New("file unreadable")
	ErrMissingColumn  = errors.New("required column missing")
	ErrNoModelColumns = errors.New("no prediction columns found")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidNumber  = errors.New("invalid number")
	ErrInvalidYear    = errors.New("invalid year")
	ErrMissingValue   = errors.New("missing value")
)

// LoadError reports why a file could not be turned into a Table.
// Line is 1-based and counts the header; zero means the error is not tied to a row.
type LoadError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("load %s: line %d, column %q: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
