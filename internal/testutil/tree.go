package testutil

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// WriteFile writes content to dir/name, creating dir if needed, and returns
// the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

// MakeDir creates dir/name and returns its path.
func MakeDir(t *testing.T, dir, name string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.MkdirAll(p, 0755); err != nil {
		t.Fatalf("creating %s: %v", p, err)
	}
	return p
}

// ReadLines returns the lines of a text file. A missing file has no lines.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return lines
}

// BackupFiles lists the backup copies in a sidecar directory, sorted,
// skipping the index and temp files.
func BackupFiles(t *testing.T, sidecarDir string) []string {
	t.Helper()

	entries, err := os.ReadDir(sidecarDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		t.Fatalf("reading %s: %v", sidecarDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == "index.txt" || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
