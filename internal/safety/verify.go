package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Report is the result of auditing one sidecar directory.
type Report struct {
	SidecarDir string
	// Entries counts index lines, including repeats.
	Entries int
	// Unique counts distinct indexed hashes.
	Unique int
	// Duplicates lists hashes indexed more than once. Two concurrent backups
	// of identical content can produce these; they are harmless.
	Duplicates []string
	// Missing lists indexed hashes with no backup file carrying their prefix.
	Missing []string
	// Mismatched lists indexed hashes whose candidate backup files all hash
	// to something else.
	Mismatched []string
	// Unindexed lists backup files whose hash prefix matches no index entry.
	Unindexed []string
}

// OK reports whether every indexed hash is backed by a matching file.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0
}

// Verify audits a sidecar directory without modifying it: every hash in the
// index should have a backup file named with its prefix whose content hashes
// back to it.
func Verify(sidecarDir string) (*Report, error) {
	info, err := os.Stat(sidecarDir)
	if err != nil {
		return nil, &IOError{Op: "stat sidecar", Path: sidecarDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &IOError{Op: "stat sidecar", Path: sidecarDir, Err: fmt.Errorf("not a directory")}
	}

	entries, err := ReadIndex(sidecarDir)
	if err != nil {
		return nil, err
	}

	report := &Report{SidecarDir: sidecarDir, Entries: len(entries)}

	seen := make(map[string]int)
	var unique []string
	for _, h := range entries {
		if seen[h] == 0 {
			unique = append(unique, h)
		}
		seen[h]++
	}
	report.Unique = len(unique)
	for _, h := range unique {
		if seen[h] > 1 {
			report.Duplicates = append(report.Duplicates, h)
		}
	}

	byPrefix, err := backupFilesByPrefix(sidecarDir)
	if err != nil {
		return nil, err
	}

	indexedPrefixes := make(map[string]bool)
	for _, h := range unique {
		prefix := hashPrefix(h)
		indexedPrefixes[prefix] = true

		candidates := byPrefix[prefix]
		if len(candidates) == 0 {
			report.Missing = append(report.Missing, h)
			continue
		}

		matched := false
		for _, name := range candidates {
			sum, err := HashFile(filepath.Join(sidecarDir, name))
			if err != nil {
				return nil, err
			}
			if sum == h {
				matched = true
				break
			}
		}
		if !matched {
			report.Mismatched = append(report.Mismatched, h)
		}
	}

	for prefix, names := range byPrefix {
		if !indexedPrefixes[prefix] {
			report.Unindexed = append(report.Unindexed, names...)
		}
	}
	sort.Strings(report.Unindexed)

	return report, nil
}

// backupFilesByPrefix groups the sidecar's backup files by the hash prefix
// embedded in their names. The index and leftover temp files are skipped.
func backupFilesByPrefix(sidecarDir string) (map[string][]string, error) {
	dirEntries, err := os.ReadDir(sidecarDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "read sidecar", Path: sidecarDir, Err: err}
	}

	groups := make(map[string][]string)
	for _, e := range dirEntries {
		name := e.Name()
		if !e.Type().IsRegular() || name == IndexFileName || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		prefix, ok := prefixFromName(name)
		if !ok {
			continue
		}
		groups[prefix] = append(groups[prefix], name)
	}
	return groups, nil
}

// prefixFromName extracts the 8-character hash prefix from a backup name of
// the form <stem>_<prefix>.<ext>.
func prefixFromName(name string) (string, bool) {
	stem, _ := splitName(name)
	i := strings.LastIndex(stem, "_")
	if i < 0 || len(stem)-i-1 != hashPrefixLen {
		return "", false
	}
	return stem[i+1:], true
}
