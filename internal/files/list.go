package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pinfs "pin-go/internal/fs"
	"pin-go/internal/safety"
)

// imageExtensions are the lowercase extensions listed as images.
var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"avif": true,
	"webp": true,
	"tiff": true,
	"svg":  true,
	"ico":  true,
}

// Entry is one visible item in a directory listing.
type Entry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	IsDir   bool   `json:"is_dir"`
	IsImage bool   `json:"is_image"`
}

// Listing is the visible content of one directory.
type Listing struct {
	CurrentPath string `json:"current_path"`
	// ParentPath is empty at a filesystem root or the configured root.
	ParentPath string   `json:"parent_path,omitempty"`
	Entries    []*Entry `json:"entries"`
}

// IsImage reports whether name has one of the image extensions,
// case-insensitively.
func IsImage(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return imageExtensions[strings.ToLower(ext)]
}

// List returns the directories and images directly inside dir, directories
// first, then by case-insensitive name. Dot-prefixed names, the backup
// sidecar and ignored names are left out.
func (s *Service) List(dir string) (*Listing, error) {
	abs, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", abs, err)
	}

	ignore := s.ignore
	local, err := pinfs.ParseIgnoreFile(filepath.Join(abs, pinfs.IgnoreFileName))
	if err != nil {
		s.logger.Warn("ignore file unreadable", "dir", abs, "error", err)
	}
	ignore = ignore.With(local)

	entries := []*Entry{}
	for _, de := range dirEntries {
		name := de.Name()
		if safety.IsSidecar(name) || strings.HasPrefix(name, ".") || ignore.Match(name) {
			continue
		}

		p := filepath.Join(abs, name)
		// Follow symlinks the way a plain stat would.
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			st, err := os.Stat(p)
			if err != nil {
				continue
			}
			isDir = st.IsDir()
		}
		isImage := !isDir && IsImage(name)
		if !isDir && !isImage {
			continue
		}
		entries = append(entries, &Entry{Name: name, Path: p, IsDir: isDir, IsImage: isImage})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return &Listing{
		CurrentPath: abs,
		ParentPath:  s.resolver.Parent(abs),
		Entries:     entries,
	}, nil
}
