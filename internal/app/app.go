package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"pin-go/internal/browser"
	"pin-go/internal/config"
	"pin-go/internal/database"
	"pin-go/internal/files"
	"pin-go/internal/fs"
	"pin-go/internal/model"
	"pin-go/internal/monitoring"
	"pin-go/internal/safety"
	"pin-go/internal/server"
)

// PinApp is the application layer between the CLI and the file service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and closes the journal and log on Close.
type PinApp struct {
	cfg     *config.Config
	journal *database.SQLiteJournal
	metrics *monitoring.Metrics
	engine  *safety.Engine
	files   *files.Service
	logger  safety.Logger
	inv     *Invocation
	logFile *os.File

	// openBrowser is swapped out in tests.
	openBrowser func(url string) error
	isTerminal  func() bool
}

// NewPinApp creates a fully wired PinApp from the given config.
// command identifies the CLI command being run (e.g. "serve", "backup").
// The caller must call Close when done.
func NewPinApp(cfg *config.Config, command string) (*PinApp, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	inv := NewInvocation(command, time.Now())
	slogger, logFile, err := newLogger(cfg.LogDir, inv.ID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	journal, err := database.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	metrics := monitoring.NewMetrics()
	engine := safety.NewEngine(logger, metrics)

	svc, err := files.NewService(engine, journal, files.Options{
		Root:   cfg.Server.Root,
		Ignore: cfg.Listing.Ignore,
	}, logger, files.RealClock{}, files.UUIDGenerator{})
	if err != nil {
		journal.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating file service: %w", err)
	}

	logger.Debug("command started", "command", command)

	return &PinApp{
		cfg:         cfg,
		journal:     journal,
		metrics:     metrics,
		engine:      engine,
		files:       svc,
		logger:      logger,
		inv:         inv,
		logFile:     logFile,
		openBrowser: browser.Open,
		isTerminal:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}, nil
}

// Serve runs the HTTP server until ctx is cancelled. The browser is opened
// on the server's URL when enabled and stdout is a terminal.
func (a *PinApp) Serve(ctx context.Context) error {
	srv := server.New(a.files, a.metrics, a.logger)

	err := srv.Run(ctx, a.cfg.Server.Addr, func(url string) {
		fmt.Printf("pin is serving on %s\n", url)
		if !a.cfg.Server.OpenBrowser || !a.isTerminal() {
			return
		}
		if err := a.openBrowser(url); err != nil {
			a.logger.Warn("could not open browser", "url", url, "error", err)
		}
	})
	if err != nil {
		a.inv.Fail()
	}
	return err
}

// BackupFile backs up one file by hand.
func (a *PinApp) BackupFile(ctx context.Context, rawPath string) (*files.Outcome, error) {
	out, err := a.files.BackupFile(a.inv.Context(ctx), rawPath)
	if err != nil {
		a.inv.Fail()
	}
	return out, err
}

// Verify audits the sidecar of dir, or every sidecar beneath it when
// recursive is set.
func (a *PinApp) Verify(rawPath string, recursive bool) ([]*safety.Report, error) {
	sidecars, err := fs.FindSidecars(rawPath, recursive)
	if err != nil {
		a.inv.Fail()
		return nil, fmt.Errorf("finding sidecars: %w", err)
	}

	var reports []*safety.Report
	for _, sidecar := range sidecars {
		report, err := safety.Verify(sidecar)
		if err != nil {
			a.inv.Fail()
			return nil, fmt.Errorf("verifying %s: %w", sidecar, err)
		}
		if !report.OK() {
			a.inv.Fail()
			a.logger.Warn("sidecar verification failed", "sidecar", sidecar,
				"missing", len(report.Missing), "mismatched", len(report.Mismatched))
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// GetHistory returns the most recent journaled operations.
func (a *PinApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.files.History(limit)
}

// Close closes the journal and the log file.
func (a *PinApp) Close() error {
	var firstErr error

	a.logger.Debug("command finished", "command", a.inv.Command, "status", a.inv.Status,
		"duration", time.Since(a.inv.StartedAt))

	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
