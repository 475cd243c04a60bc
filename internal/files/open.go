package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"avif": "image/avif",
	"svg":  "image/svg+xml",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"ico":  "image/x-icon",
}

// File is an open regular file ready to be served. The caller must Close it.
type File struct {
	*os.File
	Path        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// ContentTypeFor maps a file name's extension to a MIME type. ok is false
// for extensions outside the table.
func ContentTypeFor(name string) (contentType string, ok bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	contentType, ok = contentTypes[ext]
	return contentType, ok
}

// Open opens the regular file at path for reading.
func (s *Service) Open(path string) (*File, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := statRegular(abs)
	if err != nil {
		return nil, err
	}

	contentType, ok := ContentTypeFor(abs)
	if !ok {
		contentType = sniffContentType(abs)
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", abs, err)
	}

	return &File{
		File:        f,
		Path:        abs,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentType,
	}, nil
}

func sniffContentType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return defaultContentType
	}
	return mtype.String()
}

// statRegular returns info for path, or ErrNotFound unless it is a regular
// file. Symlinks are followed.
func statRegular(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return info, nil
}
