package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Buffer state errors
	ErrReadOnly    = errors.New("buffer is read-only")
	ErrNoEdit      = errors.New("inline editing disabled in this buffer")
	ErrNoAddLine   = errors.New("no line addition in this buffer")
	ErrNoDelLine   = errors.New("no line delete in this buffer")
	ErrNotRegular  = errors.New("not a regular file buffer")
	ErrLineRange   = errors.New("line number out of range")
	ErrRingFull    = errors.New("no free buffer slot in the ring")
	ErrNoBuffer    = errors.New("no open buffer")

	// File/IO errors
	ErrFileExists  = errors.New("file exists with a different inode")
	ErrBackup      = errors.New("backup failed")
	ErrWriteFailed = errors.New("write failed")
	ErrReadFailed  = errors.New("read failed")

	// Selection errors
	ErrNoSelection     = errors.New("no selection")
	ErrSelectConflict  = errors.New("selection target conflict")
	ErrSelectInvisible = errors.New("selection has no visible lines")

	// Search errors
	ErrNoMatch      = errors.New("no match")
	ErrBadDelimiter = errors.New("missing pattern delimiters")

	// Child process errors
	ErrPipeRunning = errors.New("background process already running")
	ErrChildSpawn  = errors.New("failed to start external tool")

	// Diff reload errors
	ErrDiffSyntax = errors.New("unexpected diff output")
)

// Wrap wraps an error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// New creates a new error with formatted message
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to extract a specific error type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// MultiError collects errors from operations with multiple failure points.
type MultiError struct {
	errors []error
}

// Add adds an error to the MultiError
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.errors) > 0
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return ""
	}
	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}
	return fmt.Sprintf("multiple errors occurred: %v", m.errors)
}

// ErrorOrNil returns nil if no errors, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if m.HasErrors() {
		return m
	}
	return nil
}
