package safety

import (
	"errors"
	"fmt"
)

// ErrNoParentDirectory is returned when the target path has no parent
// directory to hold a sidecar (an empty path or a filesystem root).
var ErrNoParentDirectory = errors.New("file has no parent directory")

// ErrNameCollision means the derived backup name is already taken by a file
// with different content. The existing backup is left untouched.
var ErrNameCollision = errors.New("backup name already used by different content")

// IOError reports a filesystem failure during a backup, carrying the
// underlying cause.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
