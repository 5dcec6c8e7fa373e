package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hamstercal-go/internal/app"
	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	var aerr *hamstercal.AuthenticationError
	var serr *hamstercal.SelectionError
	switch {
	case errors.As(err, &aerr):
		return 2
	case errors.As(err, &serr):
		return 3
	default:
		return 1
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "sync", "status").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// credentialsFromArgs builds credentials from [USER [PASSWORD]]. With USER
// alone the password is read from the terminal without echo.
func credentialsFromArgs(args []string) (*hamstercal.Credentials, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 2:
		return &hamstercal.Credentials{User: args[0], Password: args[1]}, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("password required: pass it as an argument or run from a terminal")
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", args[0])
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return &hamstercal.Credentials{User: args[0], Password: string(pw)}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func printReport(r *hamstercal.SyncReport) {
	fmt.Printf("Run %s: selected %d, uploaded %d, existing %d, skipped %d, failed %d\n",
		r.RunID, r.Selected, r.Uploaded, r.Existing, r.SkippedUnroutable, r.Failed)
	for _, f := range r.Failures {
		fmt.Printf("  failed: fact %d %q (tag %s) -> %s: %s\n", f.FactID, f.Activity, f.Tag, f.Calendar, f.Error)
	}
	if r.WatermarkAdvanced {
		fmt.Printf("Last sync time: %s\n", formatTime(r.CapturedNow))
	} else {
		fmt.Println("Last sync time unchanged; failed records will be retried on the next run.")
	}
}

var rootCmd = &cobra.Command{
	Use:          "hamstercal",
	Short:        "Copy Hamster time-tracking facts into calendars",
	SilenceUsage: true,
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
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], defaults["hamster_db"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		fmt.Println("Set calendar.client_id and calendar.client_secret before the first sync.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s %s\n", cfg.Database.Type, cfg.Database.Path)
		fmt.Printf("Calendar:  %s\n", cfg.Calendar.Type)
		fmt.Printf("Token:     %s\n", cfg.Token.Type)
		journal := cfg.Journal.Type
		if journal == "" {
			journal = "disabled"
		}
		fmt.Printf("Journal:   %s\n", journal)
		fmt.Printf("Log Level: %s\n", cfg.Log.Level)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the token sealing key",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the age identity used to seal the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		recipient, err := app.InitKeys(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Identity written to %s\n", cfg.Token.IdentityPath)
		fmt.Printf("Public key: %s\n", recipient)
		if cfg.Token.Type != "age" {
			fmt.Println("Set token.type = \"age\" to seal the stored token.")
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync [USER [PASSWORD]]",
	Short: "Upload facts finished since the last sync",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialsFromArgs(args)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "sync")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Sync(cmd.Context(), creds)
		if err != nil {
			return err
		}
		printReport(report)
		return report.Err()
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored sync state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "status")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}

		token := "absent"
		if s.HasToken {
			token = "stored"
		}
		schema := "current"
		if s.SchemaErr != nil {
			schema = s.SchemaErr.Error()
		}
		fmt.Printf("Database:       %s\n", s.DatabasePath)
		fmt.Printf("Token:          %s\n", token)
		fmt.Printf("Last sync time: %s\n", formatTime(s.LastSyncTime))
		fmt.Printf("Pending:        %d\n", s.Pending)
		fmt.Printf("Schema:         %s\n", schema)
		return nil
	},
}

// reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear or move the last sync time",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")

		a, err := newApp(cmd.Context(), "reset")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.ResetWatermark(cmd.Context(), since)
		if err != nil {
			return err
		}
		if t.IsZero() {
			fmt.Println("Last sync time cleared; the next sync uploads every fact.")
		} else {
			fmt.Printf("Last sync time set to %s\n", formatTime(t))
		}
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch [USER [PASSWORD]]",
	Short: "Sync now and again whenever the Hamster database changes",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialsFromArgs(args)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "watch")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Watch(cmd.Context(), creds, printReport)
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View journaled sync reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "history")
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No sync reports recorded.")
			return nil
		}

		for _, r := range reports {
			advanced := "kept"
			if r.WatermarkAdvanced {
				advanced = "advanced"
			}
			fmt.Printf("%s  %s  up=%d exist=%d skip=%d fail=%d  %s\n",
				r.RunID,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Uploaded,
				r.Existing,
				r.SkippedUnroutable,
				r.Failed,
				advanced,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().String("since", "", "Set the last sync time instead of clearing it (RFC3339, YYYY-MM-DD[ HH:MM:SS], or e.g. \"last monday\")")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of reports to show")
}
