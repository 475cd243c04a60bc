package safety

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Outcome describes what a backup attempt did.
type Outcome string

const (
	// OutcomeCopied means a new backup file was written and indexed.
	OutcomeCopied Outcome = "copied"
	// OutcomeDeduplicated means the content hash was already indexed.
	OutcomeDeduplicated Outcome = "deduplicated"
	// OutcomeReindexed means a backup with matching content already sat
	// under the derived name, so only the index line was appended.
	OutcomeReindexed Outcome = "reindexed"
	// OutcomeFailed is only reported to recorders and journals; a failed
	// attempt has no Result.
	OutcomeFailed Outcome = "failed"
)

// Result is the outcome of a successful backup.
type Result struct {
	Outcome Outcome
	Hash    string
	// BackupPath is the backup file written or reused. Empty on a dedup hit,
	// where the indexed copy may carry another original's name.
	BackupPath string
}

// Engine makes deduplicated safety copies of files before they are mutated.
// It holds no state between calls: every call re-reads the sidecar index, and
// no lock guards the read-then-append sequence.
type Engine struct {
	logger   Logger
	recorder Recorder
}

// NewEngine creates a backup engine. recorder may be nil.
func NewEngine(logger Logger, recorder Recorder) *Engine {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Engine{logger: logger, recorder: recorder}
}

// EnsureBackup makes sure a copy of filePath's current content exists in the
// sidecar directory next to it. Callers about to delete or rename the file
// should log a returned error and proceed anyway.
func (e *Engine) EnsureBackup(filePath string) error {
	_, err := e.Backup(filePath)
	return err
}

// Backup is EnsureBackup reporting what was done.
func (e *Engine) Backup(filePath string) (*Result, error) {
	res, err := e.backup(filePath)
	if err != nil {
		e.recorder.RecordBackup(OutcomeFailed)
		return nil, err
	}
	e.recorder.RecordBackup(res.Outcome)
	return res, nil
}

func (e *Engine) backup(filePath string) (*Result, error) {
	parent, ok := parentDir(filePath)
	if !ok {
		return nil, ErrNoParentDirectory
	}

	sidecar := SidecarDir(parent)
	if err := os.MkdirAll(sidecar, 0755); err != nil {
		return nil, &IOError{Op: "create sidecar directory", Path: sidecar, Err: err}
	}

	hash, err := HashFile(filePath)
	if err != nil {
		return nil, err
	}

	indexed, err := IndexContains(sidecar, hash)
	if err != nil {
		return nil, err
	}
	if indexed {
		e.logger.Debug("backup deduplicated", "path", filePath, "hash", hash)
		return &Result{Outcome: OutcomeDeduplicated, Hash: hash}, nil
	}

	dest := filepath.Join(sidecar, BackupName(filePath, hash))
	outcome, err := placeBackup(filePath, dest, hash)
	if err != nil {
		return nil, err
	}

	// The index line goes in only after the copy is in place.
	if err := AppendIndex(sidecar, hash); err != nil {
		return nil, err
	}

	e.logger.Info("backup created", "path", filePath, "backup", dest, "outcome", string(outcome))
	return &Result{Outcome: outcome, Hash: hash, BackupPath: dest}, nil
}

// parentDir returns the directory that holds p. Empty paths and filesystem
// roots have none.
func parentDir(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	clean := filepath.Clean(p)
	dir := filepath.Dir(clean)
	if dir == clean && clean != "." {
		return "", false
	}
	return dir, true
}

// placeBackup copies src to dest unless dest already exists. An existing
// dest is never overwritten.
func placeBackup(src, dest, hash string) (Outcome, error) {
	_, err := os.Lstat(dest)
	if err == nil {
		existing, err := HashFile(dest)
		if err != nil {
			return "", err
		}
		if existing != hash {
			return "", &IOError{Op: "place backup", Path: dest, Err: ErrNameCollision}
		}
		return OutcomeReindexed, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", &IOError{Op: "stat backup", Path: dest, Err: err}
	}

	if err := copyFile(src, dest); err != nil {
		return "", err
	}
	return OutcomeCopied, nil
}

// copyFile writes src to dest through a temp file in dest's directory so a
// partial copy never appears under the final name.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &IOError{Op: "stat", Path: src, Err: err}
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &IOError{Op: "create temp file", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return &IOError{Op: "rename", Path: dest, Err: err}
	}

	success = true
	return nil
}
