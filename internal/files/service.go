package files

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pinfs "pin-go/internal/fs"
	"pin-go/internal/model"
	"pin-go/internal/safety"
)

// Backupper makes a safety copy of a file before it is mutated.
type Backupper interface {
	Backup(filePath string) (*safety.Result, error)
}

var _ Backupper = (*safety.Engine)(nil)

// Options configures a Service.
type Options struct {
	// Root confines every path to this directory when set.
	Root string
	// Ignore holds doublestar patterns hiding entries from listings.
	Ignore []string
}

// Service lists, serves, deletes and renames files. Delete and rename back
// the file up first; a failed backup is logged and never blocks the change.
// Every path is passed explicitly; the service keeps no notion of a current
// directory.
type Service struct {
	backups  Backupper
	journal  Journal
	resolver *pinfs.Resolver
	ignore   *pinfs.IgnoreMatcher
	logger   safety.Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a file service. journal may be nil.
func NewService(backups Backupper, journal Journal, opts Options, logger safety.Logger, clock Clock, idgen IDGenerator) (*Service, error) {
	resolver, err := pinfs.NewResolver(opts.Root)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		journal = NopJournal{}
	}
	return &Service{
		backups:  backups,
		journal:  journal,
		resolver: resolver,
		ignore:   pinfs.NewIgnoreMatcher(opts.Ignore),
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}, nil
}

// Root returns the confining root directory, or "" when unconfined.
func (s *Service) Root() string {
	return s.resolver.Root()
}

// History returns up to limit journaled operations, newest first.
func (s *Service) History(limit int) ([]*model.Operation, error) {
	ops, err := s.journal.List(limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return ops, nil
}

func (s *Service) resolve(rawPath string) (string, error) {
	abs, err := s.resolver.Resolve(rawPath)
	if err != nil {
		if errors.Is(err, pinfs.ErrOutsideRoot) {
			return "", fmt.Errorf("%s: %w", rawPath, ErrOutsideRoot)
		}
		return "", err
	}
	if inSidecar(abs) {
		return "", fmt.Errorf("%s: %w", rawPath, ErrNotFound)
	}
	return abs, nil
}

// inSidecar reports whether any element of abs names a sidecar directory.
// Backups and the index are owned by the backup engine alone.
func inSidecar(abs string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(abs), "/") {
		if safety.IsSidecar(elem) {
			return true
		}
	}
	return false
}
