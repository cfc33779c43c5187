package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/cc-usage-monitor/internal/application"
	"github.com/penwyp/cc-usage-monitor/internal/config"
	"github.com/penwyp/cc-usage-monitor/internal/data/api"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/notify"
	"github.com/penwyp/cc-usage-monitor/internal/presentation/formatter"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir string

	// Output related
	outputFormat string
	timezone     string

	rootCmd = &cobra.Command{
		Use:   "cc-usage-monitor [flags]",
		Short: "API usage budget monitoring tool",
		Long: `cc-usage-monitor polls a usage API, tracks spending against daily and
monthly budgets, and reports burn-rate alerts relative to your working hours.

Examples:
  cc-usage-monitor                                  # Show the dashboard once
  cc-usage-monitor watch                            # Poll continuously
  cc-usage-monitor fields                           # Test the API and suggest field mappings
  cc-usage-monitor timeline --date 2025-06-10       # Hourly spending for a day
  cc-usage-monitor heatmap --range month            # Day-by-hour spending grid
  cc-usage-monitor export -o backup.json            # Back up settings and history
  cc-usage-monitor import backup.json               # Restore a backup`,
		RunE: runDashboard,
	}
)

const defaultDataDir = "~/.cc-usage-monitor/data"

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir,
		"Directory holding settings and history files")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"Output format (table, json, csv)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")
}

// setup initializes logging, the time provider, and the data directory.
// Config file values fill in for flags the user did not set.
func setup() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if timezone == "" {
		timezone = cfg.General.Timezone
	}
	if outputFormat == "" {
		outputFormat = cfg.General.DefaultOutput
	}
	if dataDir == defaultDataDir && cfg.General.DataDir != "" {
		dataDir = cfg.General.DataDir
	}

	logLevel := cfg.Log.Level
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(cfg.LogFile())
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return cfg, fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)
	if err := util.InitializeTimeProvider(timezone); err != nil {
		return cfg, err
	}

	dataDir = expandPath(dataDir)
	if err := ensureDir(dataDir); err != nil {
		return cfg, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// buildMonitor wires the stores, API client, and notifier into a Monitor.
func buildMonitor() (*application.Monitor, *store.SettingsStore, *store.HistoryStore, error) {
	settings, err := store.NewSettingsStore(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	history, err := store.NewHistoryStore(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}
	notifyState, err := store.NewNotifyStateStore(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open notification state: %w", err)
	}

	client := api.NewClient(store.NewResponseCache())
	notifier := notify.NewNotifier(notifyState, notify.LogSink{})
	return application.NewMonitor(settings, history, client, notifier), settings, history, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	monitor, _, _, err := buildMonitor()
	if err != nil {
		return err
	}

	data, err := monitor.Poll(cmd.Context())
	if err != nil {
		return err
	}

	if formatter.ParseOutput(outputFormat) == formatter.OutputJSON {
		return formatter.RenderJSON(os.Stdout, data)
	}
	formatter.RenderDashboard(os.Stdout, data)
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
