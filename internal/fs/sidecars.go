package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"pin-go/internal/safety"
)

// FindSidecars returns the sidecar directories belonging to dir, sorted.
// Non-recursive discovery only checks dir itself. Recursive discovery walks
// the whole tree without following symlinks and does not descend into the
// sidecars it finds.
func FindSidecars(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	if !recursive {
		sidecar := safety.SidecarDir(dir)
		if st, err := os.Stat(sidecar); err == nil && st.IsDir() {
			return []string{sidecar}, nil
		}
		return nil, nil
	}

	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; the root itself was checked above.
			return nil
		}
		if !d.IsDir() || !safety.IsSidecar(d.Name()) {
			return nil
		}
		mu.Lock()
		found = append(found, filepath.Clean(p))
		mu.Unlock()
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Strings(found)
	return found, nil
}
