package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pin-go/internal/model"
	"pin-go/internal/safety"
)

// Outcome reports what a delete, rename or manual backup did.
type Outcome struct {
	Operation *model.Operation
	// Backup is nil when the backup failed or was never attempted.
	Backup *safety.Result
	// BackupErr is the backup failure a delete or rename proceeded past.
	BackupErr error
}

// Delete backs up and removes the regular file at path.
func (s *Service) Delete(ctx context.Context, path string) (*Outcome, error) {
	out := s.begin(ctx, model.KindDelete, path)

	abs, err := s.resolve(path)
	if err != nil {
		return out, s.finish(out, err)
	}
	out.Operation.Path = abs

	if _, err := statRegular(abs); err != nil {
		return out, s.finish(out, err)
	}

	s.backupBeforeMutation(out, abs)

	if err := os.Remove(abs); err != nil {
		return out, s.finish(out, fmt.Errorf("deleting %s: %w", abs, err))
	}
	return out, s.finish(out, nil)
}

// Rename backs up the regular file at oldPath and renames it to newName in
// the same directory. newName must be a plain file name.
func (s *Service) Rename(ctx context.Context, oldPath, newName string) (*Outcome, error) {
	out := s.begin(ctx, model.KindRename, oldPath)

	abs, err := s.resolve(oldPath)
	if err != nil {
		return out, s.finish(out, err)
	}
	out.Operation.Path = abs

	if _, err := statRegular(abs); err != nil {
		return out, s.finish(out, err)
	}
	if err := validateName(newName); err != nil {
		return out, s.finish(out, err)
	}

	dest := filepath.Join(filepath.Dir(abs), newName)
	out.Operation.Target = dest

	if _, err := os.Lstat(dest); err == nil {
		return out, s.finish(out, fmt.Errorf("%s: %w", dest, ErrConflict))
	} else if !os.IsNotExist(err) {
		return out, s.finish(out, fmt.Errorf("stat %s: %w", dest, err))
	}

	s.backupBeforeMutation(out, abs)

	if err := os.Rename(abs, dest); err != nil {
		return out, s.finish(out, fmt.Errorf("renaming %s: %w", abs, err))
	}
	return out, s.finish(out, nil)
}

// BackupFile backs up the regular file at path without changing it. Unlike
// delete and rename, a backup failure is the operation's error.
func (s *Service) BackupFile(ctx context.Context, path string) (*Outcome, error) {
	out := s.begin(ctx, model.KindBackup, path)

	abs, err := s.resolve(path)
	if err != nil {
		return out, s.finish(out, err)
	}
	out.Operation.Path = abs

	if _, err := statRegular(abs); err != nil {
		return out, s.finish(out, err)
	}

	res, err := s.backups.Backup(abs)
	s.recordBackup(out, res, err)
	if err != nil {
		return out, s.finish(out, fmt.Errorf("backing up %s: %w", abs, err))
	}
	return out, s.finish(out, nil)
}

// validateName rejects anything but a single path element that is not
// a sidecar directory name.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) ||
		strings.ContainsRune(name, 0) || safety.IsSidecar(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

func (s *Service) begin(ctx context.Context, kind, path string) *Outcome {
	return &Outcome{Operation: &model.Operation{
		ID:            s.idgen.New(),
		RequestID:     RequestIDFrom(ctx),
		Kind:          kind,
		Path:          path,
		BackupOutcome: model.BackupSkipped,
		StartedAt:     s.clock.Now(),
	}}
}

// backupBeforeMutation runs the backup and logs a failure without stopping.
func (s *Service) backupBeforeMutation(out *Outcome, abs string) {
	res, err := s.backups.Backup(abs)
	s.recordBackup(out, res, err)
	if err != nil {
		s.logger.Warn("backup failed, proceeding", "op", out.Operation.Kind, "path", abs, "error", err)
	}
}

func (s *Service) recordBackup(out *Outcome, res *safety.Result, err error) {
	op := out.Operation
	if err != nil {
		out.BackupErr = err
		op.BackupOutcome = string(safety.OutcomeFailed)
		op.BackupError = err.Error()
		return
	}
	out.Backup = res
	op.BackupOutcome = string(res.Outcome)
	op.BackupHash = res.Hash
}

// finish stamps the operation, journals it and returns err unchanged.
// Journal failures are logged only.
func (s *Service) finish(out *Outcome, err error) error {
	op := out.Operation
	op.FinishedAt = s.clock.Now()
	op.Status = model.StatusSuccess
	if err != nil {
		op.Status = model.StatusError
		op.Error = err.Error()
	}

	if jerr := s.journal.Record(op); jerr != nil {
		s.logger.Error("journal write failed", "id", op.ID, "error", jerr)
	}

	if err != nil {
		s.logger.Info("operation failed", "id", op.ID, "op", op.Kind, "path", op.Path, "error", err)
	} else {
		s.logger.Info("operation completed", "id", op.ID, "op", op.Kind, "path", op.Path,
			"target", op.Target, "backup", op.BackupOutcome, "duration", op.Duration())
	}
	return err
}
