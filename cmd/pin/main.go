package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pin-go/internal/app"
	"pin-go/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none has
// been initialized yet.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config.NewConfig(defaults["base_dir"]), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp creates a PinApp from cfg. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "serve", "backup").
func newApp(cfg *config.Config, command string) (*app.PinApp, error) {
	a, err := app.NewPinApp(cfg, command)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "pin",
	Short: "Browse images with a backup-before-mutate safety net",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		root := cfg.Server.Root
		if root == "" {
			root = "(unconfined)"
		}
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Log Level:    %s\n", cfg.LogLevel)
		fmt.Printf("Address:      %s\n", cfg.Server.Addr)
		fmt.Printf("Open Browser: %t\n", cfg.Server.OpenBrowser)
		fmt.Printf("Root:         %s\n", root)
		fmt.Printf("Ignore:       %s\n", strings.Join(cfg.Listing.Ignore, ", "))
		fmt.Printf("Journal:      %s %s\n", cfg.Journal.Type, cfg.Journal.DataDir)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the image browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("root") {
			cfg.Server.Root, _ = cmd.Flags().GetString("root")
		}
		if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
			cfg.Server.OpenBrowser = false
		}

		a, err := newApp(cfg, "serve")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return a.Serve(ctx)
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Back up a file into its directory's safety net",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg, "backup")
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.BackupFile(context.Background(), args[0])
		if err != nil {
			return err
		}

		res := out.Backup
		switch {
		case res.BackupPath != "":
			fmt.Printf("%-12s %s -> %s\n", res.Outcome, out.Operation.Path, res.BackupPath)
		default:
			fmt.Printf("%-12s %s (sha256 %s)\n", res.Outcome, out.Operation.Path, res.Hash)
		}
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify DIR",
	Short: "Check safety net sidecars against their index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg, "verify")
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.Verify(args[0], recursive)
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No safety net found.")
			return nil
		}

		failed := 0
		for _, r := range reports {
			status := "ok"
			if !r.OK() {
				status = "FAILED"
				failed++
			}
			fmt.Printf("%-6s  %s  entries:%d unique:%d duplicates:%d\n",
				status, r.SidecarDir, r.Entries, r.Unique, len(r.Duplicates))
			for _, h := range r.Missing {
				fmt.Printf("        missing     %s\n", h)
			}
			for _, h := range r.Mismatched {
				fmt.Printf("        mismatched  %s\n", h)
			}
			for _, name := range r.Unindexed {
				fmt.Printf("        unindexed   %s\n", name)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d sidecar(s) failed verification", failed, len(reports))
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View journaled file operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cfg, "history")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			target := ""
			if op.Target != "" {
				target = " -> " + op.Target
			}
			fmt.Printf("%s  %-6s  %-7s  backup:%-12s  %s  %s%s\n",
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Kind,
				op.Status,
				op.BackupOutcome,
				op.Duration().Truncate(time.Millisecond),
				op.Path,
				target,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// top-level commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", config.DefaultAddr, "Address to listen on")
	serveCmd.Flags().String("root", "", "Confine browsing to this directory")
	serveCmd.Flags().Bool("no-browser", false, "Do not open a browser")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
