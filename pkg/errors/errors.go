// Package errors provides custom error types for the birthsync system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the birthsync system
var (
	// ErrNotFound indicates that a requested entry or contact was not found
	ErrNotFound = errors.New("not found")

	// ErrCorruptStore indicates that a persisted store row could not be parsed
	ErrCorruptStore = errors.New("corrupt store row")

	// ErrPersistence indicates that writing the store to disk failed
	ErrPersistence = errors.New("persistence failed")

	// ErrDirectory indicates a failure from the external directory service
	ErrDirectory = errors.New("directory service error")

	// ErrImportDecode indicates a malformed calendar import document
	ErrImportDecode = errors.New("import decode failed")

	// ErrTerminalState indicates an attempted transition out of a terminal state
	ErrTerminalState = errors.New("entry is in a terminal state")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that an operation was canceled before dispatch
	ErrCanceled = errors.New("operation canceled")
)

// UnknownEntryError represents an operation that referenced a nonexistent entry.
type UnknownEntryError struct {
	ID string
}

// Error implements the error interface
func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("entry with ID %s not found", e.ID)
}

// Is implements errors.Is support
func (e *UnknownEntryError) Is(target error) bool {
	return target == ErrNotFound
}

// NewUnknownEntryError creates a new UnknownEntryError
func NewUnknownEntryError(id string) *UnknownEntryError {
	return &UnknownEntryError{ID: id}
}

// CorruptRowError represents a persisted store row that could not be parsed.
// Loading skips the offending row and continues; the error is reported, not fatal.
type CorruptRowError struct {
	Path   string
	Line   int
	Reason string
}

// Error implements the error interface
func (e *CorruptRowError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corrupt row %d in %s: %s", e.Line, e.Path, e.Reason)
	}
	return fmt.Sprintf("corrupt row %d: %s", e.Line, e.Reason)
}

// Is implements errors.Is support
func (e *CorruptRowError) Is(target error) bool {
	return target == ErrCorruptStore
}

// NewCorruptRowError creates a new CorruptRowError
func NewCorruptRowError(path string, line int, reason string) *CorruptRowError {
	return &CorruptRowError{Path: path, Line: line, Reason: reason}
}

// PersistenceError represents a failed store save. The in-memory mutation is
// retained; the caller decides whether to retry the save.
type PersistenceError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist store to %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(path string, err error) *PersistenceError {
	return &PersistenceError{Path: path, Err: err}
}

// DirectoryError represents a failure from the external directory service
// during an apply operation. It is recorded per entry and never retried.
type DirectoryError struct {
	Op  string // "list", "get", "update", or "create"
	Ref string // directory reference of the contact, if any
	Err error
}

// Error implements the error interface
func (e *DirectoryError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("directory %s failed for %s: %v", e.Op, e.Ref, e.Err)
	}
	return fmt.Sprintf("directory %s failed: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DirectoryError) Is(target error) bool {
	return target == ErrDirectory
}

// NewDirectoryError creates a new DirectoryError
func NewDirectoryError(op, ref string, err error) *DirectoryError {
	return &DirectoryError{Op: op, Ref: ref, Err: err}
}

// ImportError represents a malformed calendar import document. No entries
// from the document are committed when this error is returned.
type ImportError struct {
	Source string
	Err    error
}

// Error implements the error interface
func (e *ImportError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to decode calendar import %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to decode calendar import: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ImportError) Is(target error) bool {
	return target == ErrImportDecode
}

// NewImportError creates a new ImportError
func NewImportError(source string, err error) *ImportError {
	return &ImportError{Source: source, Err: err}
}

// TransitionError represents an attempted state transition that the entry
// state machine forbids (Done and Removed are terminal).
type TransitionError struct {
	ID   string
	From string
	To   string
}

// Error implements the error interface
func (e *TransitionError) Error() string {
	return fmt.Sprintf("entry %s cannot transition from %s to %s", e.ID, e.From, e.To)
}

// Is implements errors.Is support
func (e *TransitionError) Is(target error) bool {
	return target == ErrTerminalState
}

// NewTransitionError creates a new TransitionError
func NewTransitionError(id, from, to string) *TransitionError {
	return &TransitionError{ID: id, From: from, To: to}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorruptStore checks if an error is a corrupt store row error
func IsCorruptStore(err error) bool {
	return errors.Is(err, ErrCorruptStore)
}

// IsPersistence checks if an error is a persistence error
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsDirectory checks if an error is a directory service error
func IsDirectory(err error) bool {
	return errors.Is(err, ErrDirectory)
}

// IsImportDecode checks if an error is an import decode error
func IsImportDecode(err error) bool {
	return errors.Is(err, ErrImportDecode)
}

// IsTerminalState checks if an error is a terminal state transition error
func IsTerminalState(err error) bool {
	return errors.Is(err, ErrTerminalState)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// WrapIO wraps an I/O error with operation and path context
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s %s: %w", operation, path, err)
}

// WrapParse wraps a parsing error with format and file context
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to parse %s file %s: %w", format, file, err)
}
