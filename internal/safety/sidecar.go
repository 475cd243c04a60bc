package safety

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SidecarDirName is the hidden directory created next to protected files.
	SidecarDirName = ".safety_net"

	// IndexFileName is the append-only hash log inside a sidecar directory.
	IndexFileName = "index.txt"

	// fallbackExt replaces the extension of files that have none.
	fallbackExt = "bak"

	// hashPrefixLen is how many hex characters of the hash go into a backup name.
	hashPrefixLen = 8
)

// SidecarDir returns the sidecar directory for files living in dir.
func SidecarDir(dir string) string {
	return filepath.Join(dir, SidecarDirName)
}

// IsSidecar reports whether a directory entry name is a sidecar directory.
// Listings must exclude these entries regardless of any other hiding rule.
func IsSidecar(name string) bool {
	return name == SidecarDirName
}

// IndexPath returns the location of the index file in a sidecar directory.
func IndexPath(sidecarDir string) string {
	return filepath.Join(sidecarDir, IndexFileName)
}

// BackupName derives the backup file name for filePath with the given hash:
// <stem>_<first 8 hex chars>.<ext>, or <stem>_<first 8 hex chars>.bak when
// the original has no extension.
func BackupName(filePath, hash string) string {
	stem, ext := splitName(filepath.Base(filePath))
	if ext == "" {
		ext = fallbackExt
	}
	return stem + "_" + hashPrefix(hash) + "." + ext
}

// splitName splits a file name at its last dot. A leading dot does not start
// an extension, so ".profile" has no extension.
func splitName(name string) (stem, ext string) {
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "file", ""
	}
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func hashPrefix(hash string) string {
	if len(hash) <= hashPrefixLen {
		return hash
	}
	return hash[:hashPrefixLen]
}

// ReadIndex returns every line of the sidecar index in append order.
// A missing index yields no entries and no error.
func ReadIndex(sidecarDir string) ([]string, error) {
	var entries []string
	err := scanIndex(sidecarDir, func(line string) bool {
		entries = append(entries, line)
		return true
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// IndexContains reports whether hash appears as a full line of the index.
func IndexContains(sidecarDir, hash string) (bool, error) {
	found := false
	err := scanIndex(sidecarDir, func(line string) bool {
		if line == hash {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// AppendIndex appends hash as one line to the index, creating it if needed.
// The line is written with a single append-mode write.
func AppendIndex(sidecarDir, hash string) error {
	path := IndexPath(sidecarDir)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &IOError{Op: "open index", Path: path, Err: err}
	}

	if _, err := f.Write([]byte(hash + "\n")); err != nil {
		f.Close()
		return &IOError{Op: "append index", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close index", Path: path, Err: err}
	}
	return nil
}

// scanIndex calls fn for each index line until fn returns false.
func scanIndex(sidecarDir string, fn func(line string) bool) error {
	path := IndexPath(sidecarDir)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &IOError{Op: "open index", Path: path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			if !fn(strings.TrimRight(line, "\r\n")) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &IOError{Op: "read index", Path: path, Err: fmt.Errorf("reading lines: %w", err)}
		}
	}
}
