package files

import "errors"

var (
	// ErrNotFound means the path does not exist or is not the kind of entry
	// the operation needs (a regular file for open, delete and rename).
	ErrNotFound = errors.New("not found")
	// ErrNotDirectory means a listing was requested for something that is
	// not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrConflict means a rename destination already exists.
	ErrConflict = errors.New("destination already exists")
	// ErrInvalidName means a rename target is not a plain file name.
	ErrInvalidName = errors.New("invalid file name")
	// ErrOutsideRoot means the path resolves outside the configured root.
	ErrOutsideRoot = errors.New("path outside root")
)
