package fs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside the confining root.
var ErrOutsideRoot = errors.New("path outside root")

// Resolver turns raw request paths into clean absolute paths, optionally
// confined to a root directory. Confinement is lexical: symlinks inside the
// root are not followed to check where they point.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver. An empty root disables confinement.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return &Resolver{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	return &Resolver{root: abs}, nil
}

// Root returns the confining root, or "" when unconfined.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve returns the absolute form of rawPath. An empty rawPath resolves to
// the root, or the working directory when unconfined.
func (r *Resolver) Resolve(rawPath string) (string, error) {
	if rawPath == "" {
		if r.root != "" {
			return r.root, nil
		}
		rawPath = "."
	}

	abs, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	if !r.Contains(abs) {
		return "", fmt.Errorf("%s: %w", abs, ErrOutsideRoot)
	}
	return abs, nil
}

// Contains reports whether the absolute path abs lies within the root.
func (r *Resolver) Contains(abs string) bool {
	if r.root == "" {
		return true
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Parent returns the parent of abs for navigation, or "" when abs is a
// filesystem root or the confining root.
func (r *Resolver) Parent(abs string) string {
	parent := filepath.Dir(abs)
	if parent == abs {
		return ""
	}
	if r.root != "" && abs == r.root {
		return ""
	}
	return parent
}
