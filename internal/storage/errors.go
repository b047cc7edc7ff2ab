package storage

import (
	"errors"
	"fmt"
)

var (
	ErrHeaderMismatch = errors.New("unexpected header")
	ErrFieldCount     = errors.New("wrong number of fields")
)

// IOError reports storage that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FormatError reports readable storage whose content is not a ledger.
// Line is 1-based and counts the header.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

func IsFormatError(err error) bool {
	var fmtErr *FormatError
	return errors.As(err, &fmtErr)
}
