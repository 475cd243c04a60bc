package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pin-go/internal/config"
	"pin-go/internal/files"
	"pin-go/internal/model"
	"pin-go/internal/testutil"
)

func newTestApp(t *testing.T) *PinApp {
	t.Helper()
	cfg := config.NewConfig(t.TempDir())
	cfg.Journal = config.JournalConfig{Type: "memory"}
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.LogLevel = "error"

	a, err := NewPinApp(cfg, "test")
	if err != nil {
		t.Fatalf("NewPinApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewPinApp_InvalidLogLevel(t *testing.T) {
	cfg := config.NewConfig(t.TempDir())
	cfg.LogLevel = "chatty"
	if _, err := NewPinApp(cfg, "test"); err == nil {
		t.Error("NewPinApp() error = nil, want invalid log level error")
	}
}

func TestNewPinApp_SQLiteJournal(t *testing.T) {
	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.LogLevel = "error"

	a, err := NewPinApp(cfg, "test")
	if err != nil {
		t.Fatalf("NewPinApp() error = %v", err)
	}
	defer a.Close()

	if _, err := os.Stat(filepath.Join(base, "db", "journal.db")); err != nil {
		t.Errorf("journal database not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "log", LogFileName)); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestPinApp_BackupFile(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "shot.png", []byte("pixels"))

	out, err := a.BackupFile(context.Background(), p)
	if err != nil {
		t.Fatalf("BackupFile() error = %v", err)
	}
	if out.Operation.RequestID != a.inv.ID {
		t.Errorf("RequestID = %q, want invocation id %q", out.Operation.RequestID, a.inv.ID)
	}

	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != model.KindBackup || ops[0].BackupOutcome != "copied" {
		t.Errorf("GetHistory() = %+v", ops)
	}

	if _, err := a.BackupFile(context.Background(), filepath.Join(dir, "missing.png")); !errors.Is(err, files.ErrNotFound) {
		t.Errorf("BackupFile(missing) error = %v, want ErrNotFound", err)
	}
	if a.inv.Status != "error" {
		t.Errorf("invocation status = %q, want error", a.inv.Status)
	}
}

func TestPinApp_Verify(t *testing.T) {
	a := newTestApp(t)
	root := t.TempDir()
	top := testutil.WriteFile(t, root, "a.jpg", []byte("a"))
	nested := testutil.WriteFile(t, filepath.Join(root, "trip"), "b.jpg", []byte("b"))
	for _, p := range []string{top, nested} {
		if _, err := a.BackupFile(context.Background(), p); err != nil {
			t.Fatalf("BackupFile(%s) error = %v", p, err)
		}
	}

	reports, err := a.Verify(root, false)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("Verify(non-recursive) returned %d reports, want 1", len(reports))
	}

	reports, err = a.Verify(root, true)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Verify(recursive) returned %d reports, want 2", len(reports))
	}
	for _, r := range reports {
		if !r.OK() {
			t.Errorf("report for %s not OK: %+v", r.SidecarDir, r)
		}
	}
}

func TestPinApp_Serve(t *testing.T) {
	tests := []struct {
		name        string
		openBrowser bool
		terminal    bool
		wantOpened  bool
	}{
		{name: "opens browser on a terminal", openBrowser: true, terminal: true, wantOpened: true},
		{name: "no terminal", openBrowser: true, terminal: false, wantOpened: false},
		{name: "disabled", openBrowser: false, terminal: true, wantOpened: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			a.cfg.Server.OpenBrowser = tt.openBrowser
			a.isTerminal = func() bool { return tt.terminal }

			var opened string
			a.openBrowser = func(url string) error {
				opened = url
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := a.Serve(ctx); err != nil {
				t.Fatalf("Serve() error = %v", err)
			}

			if tt.wantOpened && !strings.HasPrefix(opened, "http://127.0.0.1:") {
				t.Errorf("browser opened with %q, want server URL", opened)
			}
			if !tt.wantOpened && opened != "" {
				t.Errorf("browser opened with %q, want not opened", opened)
			}
		})
	}
}
