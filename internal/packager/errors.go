package packager

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a format name outside the closed set.
var ErrUnsupportedFormat = errors.New("unsupported package format")

// errNotADirectory indicates a configured base path that is a regular file.
var errNotADirectory = errors.New("not a directory")

// PathResolutionError reports an unusable base directory: not a directory,
// not creatable or not writable.
type PathResolutionError struct {
	// Path is the directory that could not be resolved.
	Path string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot use %s as a packaging directory: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PathResolutionError) Unwrap() error {
	return e.Err
}

// DocumentError reports a metadata document that could not be rendered or
// persisted. Document generation is deterministic, so failures here usually
// mean a filesystem problem.
type DocumentError struct {
	// Document is the document filename, e.g. "Distribution".
	Document string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("generate %s document: %v", e.Document, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentError) Unwrap() error {
	return e.Err
}
